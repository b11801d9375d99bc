package session

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/robalobadob/hangman/internal/words"
)

// ErrUnknownClient means a request referenced an id that was never
// registered or was already removed. It indicates a broken client.
var ErrUnknownClient = errors.New("unknown client")

// Registry maps client ids to sessions. It is owned by the server loop and
// only touched while one exchange is being handled, so it has no mutex.
type Registry struct {
	corpus   *words.Corpus
	sessions map[ID]*Session
	next     ID
	pick     Picker
}

// NewRegistry builds an empty registry dealing words from corpus.
// A nil pick uses DefaultPicker.
func NewRegistry(corpus *words.Corpus, pick Picker) *Registry {
	if pick == nil {
		pick = DefaultPicker
	}
	return &Registry{
		corpus:   corpus,
		sessions: make(map[ID]*Session),
		pick:     pick,
	}
}

// Register creates a session with the next sequential id and a full copy of
// the corpus as its pool.
func (r *Registry) Register() *Session {
	s := newSession(r.next, r.corpus.Pool(), r.pick)
	r.sessions[s.ID] = s
	r.next++
	return s
}

// Lookup returns the session for id.
func (r *Registry) Lookup(id ID) (*Session, error) {
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("client %d: %w", id, ErrUnknownClient)
}

// Remove drops the session for id. Removing an unknown id is a no-op.
func (r *Registry) Remove(id ID) { delete(r.sessions, id) }

// Len returns the number of live sessions.
func (r *Registry) Len() int { return len(r.sessions) }

// Clear drops every session and returns how many there were.
func (r *Registry) Clear() int {
	n := len(r.sessions)
	clear(r.sessions)
	return n
}

// Snapshot returns the state of every live session ordered by id.
func (r *Registry) Snapshot() []Info {
	infos := lo.MapToSlice(r.sessions, func(_ ID, s *Session) Info { return s.Info() })
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
