package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

func rounds() []Round {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	return []Round{
		{RunID: "run-a", ClientID: 0, Number: 1, Word: "CAT", Outcome: game.StatusWon, Errors: 1, FinishedAt: now},
		{RunID: "run-a", ClientID: 0, Number: 2, Word: "DOG", Outcome: game.StatusLost, Errors: 9, FinishedAt: now},
		{RunID: "run-a", ClientID: 1, Number: 1, Word: "CAT", Outcome: game.StatusWon, Errors: 0, FinishedAt: now},
	}
}

func checkTotals(t *testing.T, st Store, want Totals) {
	t.Helper()
	got, err := st.Totals(context.Background())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if got != want {
		t.Fatalf("totals = %+v, want %+v", got, want)
	}
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	checkTotals(t, st, Totals{})
	for _, r := range rounds() {
		if err := st.Record(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}
	checkTotals(t, st, Totals{Rounds: 3, Won: 2, Lost: 1})
}

// openTestSQLite skips when the driver was built without cgo.
func openTestSQLite(t *testing.T, path string) Store {
	t.Helper()
	st, err := OpenSQLite(path)
	if err != nil {
		if strings.Contains(err.Error(), "cgo") {
			t.Skipf("sqlite3 unavailable: %v", err)
		}
		t.Fatalf("open: %v", err)
	}
	return st
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hangman.db")

	st := openTestSQLite(t, path)
	checkTotals(t, st, Totals{})
	for _, r := range rounds() {
		if err := st.Record(context.Background(), r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	// duplicates are ignored
	if err := st.Record(context.Background(), rounds()[0]); err != nil {
		t.Fatalf("duplicate record: %v", err)
	}
	checkTotals(t, st, Totals{Rounds: 3, Won: 2, Lost: 1})
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	// migrations are idempotent on reopen
	st = openTestSQLite(t, path)
	defer st.Close()
	checkTotals(t, st, Totals{Rounds: 3, Won: 2, Lost: 1})
}
