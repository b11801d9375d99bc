package ipc

import (
	"bytes"
	"unsafe"

	"github.com/robalobadob/hangman/internal/game"
)

// WordCapacity is the size of the word buffer in the mailbox, terminator
// included.
const WordCapacity = game.MaxWordLength + 1

// unregistered is the wire value of clientId for a client without an id.
const unregistered int32 = -1

// record is the mailbox as laid out in shared memory. Field order and
// types match the C struct the original clients map:
//
//	unsigned int errors; int clientno; enum game_state status;
//	char tried_char; char word[80]; bool terminate;
type record struct {
	ErrorCount uint32
	ClientID   int32
	Status     game.Status
	TriedChar  byte
	Word       [WordCapacity]byte
	Terminate  bool
}

var recordSize = int(unsafe.Sizeof(record{}))

// Request is what a client writes into the mailbox.
type Request struct {
	ClientID   int32 // meaningful only when Registered
	Registered bool
	Status     game.Status // StatusNew asks for a round, anything else is a guess
	Guess      byte
	Terminate  bool // the client is leaving
}

// Response is what the server writes back.
type Response struct {
	ClientID int32
	Status   game.Status
	Errors   uint32
	Word     string
}

func (r *record) putRequest(req Request) {
	r.ClientID = unregistered
	if req.Registered {
		r.ClientID = req.ClientID
	}
	r.Status = req.Status
	r.TriedChar = req.Guess
	// Clients only ever raise the flag. Clearing it is the server's job, so
	// a shutdown broadcast cannot be undone by a late request.
	if req.Terminate {
		r.Terminate = true
	}
}

func (r *record) request() Request {
	return Request{
		ClientID:   r.ClientID,
		Registered: r.ClientID != unregistered,
		Status:     r.Status,
		Guess:      r.TriedChar,
		Terminate:  r.Terminate,
	}
}

// putResponse writes resp and zero-fills the rest of the word buffer, so
// the word is always NUL-terminated within the buffer.
func (r *record) putResponse(resp Response) {
	r.ClientID = resp.ClientID
	r.Status = resp.Status
	r.ErrorCount = resp.Errors
	n := copy(r.Word[:WordCapacity-1], resp.Word)
	clear(r.Word[n:])
	r.Terminate = false
}

func (r *record) response() Response {
	word := r.Word[:]
	if i := bytes.IndexByte(word, 0); i >= 0 {
		word = word[:i]
	}
	return Response{
		ClientID: r.ClientID,
		Status:   r.Status,
		Errors:   r.ErrorCount,
		Word:     string(word),
	}
}
