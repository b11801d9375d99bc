// Package client is the player side of the hangman mailbox: it validates
// guesses locally, sends them to the server and keeps track of the round.
package client

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/ipc"
)

// Input validation errors. Invalid guesses are never sent to the server.
var (
	ErrNotSingleLetter = errors.New("guess must be a single character")
	ErrNotLetter       = errors.New("guess must be a letter")
	ErrAlreadyTried    = errors.New("letter already tried")
	ErrNoOpenRound     = errors.New("no round in progress")
)

// Transport is the client side of the rendezvous channel.
type Transport interface {
	Exchange(ctx context.Context, req ipc.Request) (ipc.Response, error)
	Goodbye(ctx context.Context, id int32) error
}

// Round is the client's view of the current round.
type Round struct {
	Word   string // obscured word, or the secret once the round is over
	Errors uint32
	Status game.Status
	Tried  []byte // letters guessed so far, in order
}

// Client plays rounds against a server.
type Client struct {
	t          Transport
	id         int32
	registered bool
	round      Round
}

func New(t Transport) *Client { return &Client{t: t} }

// ID returns the id the server assigned; ok is false before the first
// exchange.
func (c *Client) ID() (id int32, ok bool) { return c.id, c.registered }

// Round returns the current round.
func (c *Client) Round() Round { return c.round }

// NewGame asks the server for a new word. The first call also registers
// the client. A Round with game.StatusImpossible means every word of the
// corpus has been played.
func (c *Client) NewGame(ctx context.Context) (Round, error) {
	if err := c.exchange(ctx, game.StatusNew, 0); err != nil {
		return c.round, err
	}
	c.round.Tried = nil
	return c.round, nil
}

// Guess validates input and, if it is a letter not tried yet in this
// round, sends it to the server.
func (c *Client) Guess(ctx context.Context, input string) (Round, error) {
	ch, err := c.validate(input)
	if err != nil {
		return c.round, err
	}
	if err := c.exchange(ctx, game.StatusOpen, ch); err != nil {
		return c.round, err
	}
	c.round.Tried = append(c.round.Tried, ch)
	return c.round, nil
}

// Quit tells the server this client is leaving so its session is freed.
// A client that never registered has nothing to say.
func (c *Client) Quit(ctx context.Context) error {
	if !c.registered {
		return nil
	}
	if err := c.t.Goodbye(ctx, c.id); err != nil {
		return err
	}
	c.registered = false
	return nil
}

func (c *Client) validate(input string) (byte, error) {
	line := strings.TrimRight(input, "\r\n")
	if len(line) != 1 {
		return 0, ErrNotSingleLetter
	}
	ch := line[0]
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	if ch < 'A' || ch > 'Z' {
		return 0, ErrNotLetter
	}
	if c.round.Status != game.StatusOpen {
		return 0, ErrNoOpenRound
	}
	if slices.Contains(c.round.Tried, ch) {
		return 0, ErrAlreadyTried
	}
	return ch, nil
}

func (c *Client) exchange(ctx context.Context, status game.Status, guess byte) error {
	resp, err := c.t.Exchange(ctx, ipc.Request{
		ClientID:   c.id,
		Registered: c.registered,
		Status:     status,
		Guess:      guess,
	})
	// The server never answers with StatusNew, so a non-zero status means a
	// response was consumed even if err reports a cancelled context.
	if resp.Status != game.StatusNew {
		c.id, c.registered = resp.ClientID, true
		c.round.Word = resp.Word
		c.round.Errors = resp.Errors
		c.round.Status = resp.Status
	}
	return err
}
