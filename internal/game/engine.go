// internal/game/engine.go
//
// Pure transition logic for a single hangman round.
// Responsibilities:
//   - Start a round from a secret (obscure letters, keep spaces).
//   - Apply a guessed letter: reveal, count errors, detect win/loss.
//
// Word selection and pool bookkeeping live in the session package; this
// file only knows about one secret at a time.
package game

import "errors"

// ErrNotOpen is returned when a guess is applied to a round that does not
// accept guesses.
var ErrNotOpen = errors.New("game not open")

const (
	hidden = '_'
	space  = ' '
)

// Start resets g to a fresh open round for secret.
func (g *Game) Start(secret string) {
	g.Secret = secret
	g.Obscured = obscure(secret)
	g.Errors = 0
	g.Status = StatusOpen
}

// Exhaust marks the round impossible: there is no word left to play.
func (g *Game) Exhaust() {
	g.Secret = ""
	g.Obscured = nil
	g.Errors = 0
	g.Status = StatusImpossible
}

// Guess applies a single guessed character and returns the resulting status.
//
// State transitions:
//   - every position revealed → StatusWon.
//   - no position matched and Errors > MaxErrors → StatusLost, Obscured = Secret.
//
// A letter that is already revealed matches again, so re-guessing it never
// counts as an error and leaves Obscured untouched.
func (g *Game) Guess(c byte) (Status, error) {
	if g.Status != StatusOpen {
		return g.Status, ErrNotOpen
	}
	c = upper(c)

	matched := false
	if isLetter(c) {
		for i := 0; i < len(g.Secret); i++ {
			if g.Secret[i] == c {
				g.Obscured[i] = c
				matched = true
			}
		}
	}

	if string(g.Obscured) == g.Secret {
		g.Status = StatusWon
		return g.Status, nil
	}
	if matched {
		return g.Status, nil
	}

	g.Errors++
	if g.Errors > MaxErrors {
		g.Status = StatusLost
		g.Obscured = []byte(g.Secret)
	}
	return g.Status, nil
}

// View returns the obscured word as a string.
func (g *Game) View() string { return string(g.Obscured) }

// obscure hides every letter of secret; spaces (and anything else that is
// not a letter) stay visible.
func obscure(secret string) []byte {
	out := make([]byte, len(secret))
	for i := 0; i < len(secret); i++ {
		if isLetter(secret[i]) {
			out[i] = hidden
		} else {
			out[i] = secret[i]
		}
	}
	return out
}

func isLetter(c byte) bool { return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' }

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
