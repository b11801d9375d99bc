// Package session holds the server-side state of each connected client:
// its private word pool, its current round and how many rounds it played.
package session

import (
	"math/rand"

	"github.com/robalobadob/hangman/internal/game"
)

// ID identifies a client for the lifetime of the server process.
type ID int32

// Picker returns an index in [0, n). n is always positive.
type Picker func(n int) int

// DefaultPicker selects uniformly at random.
func DefaultPicker(n int) int { return rand.Intn(n) }

// Session is one client's private slice of server state.
type Session struct {
	ID     ID
	Game   game.Game
	Played int // rounds started

	pool []string
	pick Picker
}

func newSession(id ID, pool []string, pick Picker) *Session {
	return &Session{ID: id, pool: pool, pick: pick}
}

// Remaining returns how many words the session has not played yet.
func (s *Session) Remaining() int { return len(s.pool) }

// NewGame deals the next secret from the pool, sampling without replacement.
// The index is drawn over the current pool size before the pool shrinks.
// Once the pool is empty every call yields game.StatusImpossible.
func (s *Session) NewGame() game.Status {
	n := len(s.pool)
	if n == 0 {
		s.Game.Exhaust()
		return s.Game.Status
	}

	i := s.pick(n)
	secret := s.pool[i]
	s.pool[i] = s.pool[n-1]
	s.pool[n-1] = ""
	s.pool = s.pool[:n-1]

	s.Game.Start(secret)
	s.Played++
	return s.Game.Status
}

// Guess applies c to the current round. finished is true when this guess
// ended the round.
func (s *Session) Guess(c byte) (status game.Status, finished bool, err error) {
	status, err = s.Game.Guess(c)
	if err != nil {
		return status, false, err
	}
	return status, status.Finished(), nil
}

// Info is a read-only view of a session for diagnostics.
type Info struct {
	ID        ID     `json:"id"`
	Played    int    `json:"played"`
	Remaining int    `json:"remaining"`
	Status    string `json:"status"`
	Errors    uint32 `json:"errors"`
}

// Info returns a copy of the session's externally visible state.
func (s *Session) Info() Info {
	return Info{
		ID:        s.ID,
		Played:    s.Played,
		Remaining: len(s.pool),
		Status:    s.Game.Status.String(),
		Errors:    s.Game.Errors,
	}
}
