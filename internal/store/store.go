// internal/store/store.go
//
// Results ledger for finished hangman rounds.
// The server records every round that ends in a win or a loss; the admin
// API reads the totals back.
//
// Implementations:
//   - memory (this package): ephemeral, used when no database is configured.
//   - sqlite (this package): durable, shared across server runs.

package store

import (
	"context"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

// Round is one finished round.
type Round struct {
	RunID      string      // server run that dealt the word
	ClientID   int32       // session id within that run
	Number     int         // 1-based round number within the session
	Word       string      // the secret
	Outcome    game.Status // StatusWon or StatusLost
	Errors     uint32      // wrong guesses at the end of the round
	FinishedAt time.Time
}

// Totals summarizes recorded rounds.
type Totals struct {
	Rounds int `json:"rounds"`
	Won    int `json:"won"`
	Lost   int `json:"lost"`
}

// Store defines the persistence interface for finished rounds.
type Store interface {
	// Record persists a finished round.
	Record(ctx context.Context, r Round) error

	// Totals aggregates every recorded round.
	Totals(ctx context.Context) (Totals, error)

	// Close releases underlying resources.
	Close() error
}

func (t *Totals) add(outcome game.Status) {
	t.Rounds++
	switch outcome {
	case game.StatusWon:
		t.Won++
	case game.StatusLost:
		t.Lost++
	}
}
