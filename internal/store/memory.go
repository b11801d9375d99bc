// internal/store/memory.go
//
// In-memory implementation of the Store interface.
//
// Characteristics:
//   - Keeps every recorded round in a slice.
//   - Concurrency-safe via RWMutex: the server loop writes while the
//     admin API reads.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
)

// memory is an in-memory slice-based Store implementation.
type memory struct {
	mu     sync.RWMutex // guards rounds
	rounds []Round
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{}
}

// Record appends the round.
func (m *memory) Record(ctx context.Context, r Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, r)
	return nil
}

// Totals counts the recorded rounds by outcome.
func (m *memory) Totals(ctx context.Context) (Totals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var t Totals
	for _, r := range m.rounds {
		t.add(r.Outcome)
	}
	return t, nil
}

func (m *memory) Close() error { return nil }
