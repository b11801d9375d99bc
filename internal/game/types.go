// internal/game/types.go
//
// Core type definitions for the hangman game engine.
// Defines:
//   - Status: lifecycle of a single round (new/open/impossible/lost/won).
//   - Game: state for a single in-progress or finished round.

package game

const (
	// MaxErrors is the number of wrong guesses tolerated. The round is lost
	// once the error counter exceeds it.
	MaxErrors = 8

	// MaxWordLength is the longest secret that fits the shared mailbox
	// together with its NUL terminator.
	MaxWordLength = 79
)

// Status represents the state a round is in.
// The numeric values are part of the shared-memory wire format and follow
// the order the C clients expect: new, open, impossible, lost, won.
type Status int32

const (
	StatusNew        Status = iota // a new round is requested (set by the client)
	StatusOpen                     // a word is chosen and guesses are accepted
	StatusImpossible               // the session has played every word
	StatusLost                     // too many wrong guesses
	StatusWon                      // every letter was revealed
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusOpen:
		return "open"
	case StatusImpossible:
		return "impossible"
	case StatusLost:
		return "lost"
	case StatusWon:
		return "won"
	}
	return "unknown"
}

// Finished reports whether the round has ended with a win or a loss.
func (s Status) Finished() bool { return s == StatusWon || s == StatusLost }

// Game holds the state of a single hangman round.
type Game struct {
	Secret   string // The solution (uppercase letters and spaces).
	Obscured []byte // Partly revealed secret, same length as Secret.
	Errors   uint32 // Wrong guesses so far.
	Status   Status
}
