// internal/words/corpus.go
//
// Provides the word corpus the server deals secrets from.
//
// Responsibilities:
//   - Read one word per line from a file or any io.Reader (stdin).
//   - Normalize words: keep ASCII letters and spaces, uppercase, trim.
//   - Hand out private copies of the list for per-client pools.
//
// Constraints:
//   • Empty lines (and lines that normalize to nothing) are skipped.
//   • Words longer than game.MaxWordLength are skipped with a warning;
//     they would not fit the shared mailbox.
//   • The Corpus is immutable once loaded.

package words

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/hangman/internal/game"
)

// ErrEmptyCorpus is returned when no usable word was read.
var ErrEmptyCorpus = errors.New("words: corpus is empty")

// Corpus is an immutable, ordered list of normalized words.
type Corpus struct {
	words []string
}

// New builds a corpus from already normalized words. It is mostly useful
// for tests and embedding; Load normalizes its input itself.
func New(list ...string) *Corpus {
	return &Corpus{words: append([]string(nil), list...)}
}

// ReadFile loads a corpus from the file at path.
func ReadFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c, nil
}

// Load reads words line by line until EOF. Lines of any length are read
// whole, so an oversized line is skipped instead of failing the load.
func Load(r io.Reader) (*Corpus, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	list := lo.FilterMap(lines, func(line string, i int) (string, bool) {
		w := Normalize(line)
		if w == "" {
			return "", false
		}
		if len(w) > game.MaxWordLength {
			log.Warn().Int("line", i+1).Int("length", len(w)).Msg("skipping word: too long")
			return "", false
		}
		return w, true
	})
	if len(list) == 0 {
		return nil, ErrEmptyCorpus
	}
	return &Corpus{words: list}, nil
}

// LoadContext is Load that gives up once ctx is done, for readers such as
// stdin that may block indefinitely. The reader is then left to a goroutine
// that is still blocked on it.
func LoadContext(ctx context.Context, r io.Reader) (*Corpus, error) {
	type result struct {
		c   *Corpus
		err error
	}
	done := make(chan result, 1)
	go func() {
		c, err := Load(r)
		done <- result{c, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.c, res.err
	}
}

// Normalize keeps letters and spaces, uppercases, and trims surrounding spaces.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c == ' ':
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}

// Len returns the number of words.
func (c *Corpus) Len() int { return len(c.words) }

// At returns the i-th word.
func (c *Corpus) At(i int) string { return c.words[i] }

// Pool returns a fresh copy of the word list that the caller may consume.
func (c *Corpus) Pool() []string {
	return append(make([]string, 0, len(c.words)), c.words...)
}
