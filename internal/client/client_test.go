package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/ipc"
	"github.com/robalobadob/hangman/internal/session"
	"github.com/robalobadob/hangman/internal/words"
)

// fakeServer answers exchanges in-process the way the real server does.
type fakeServer struct {
	reg      *session.Registry
	sent     []ipc.Request
	goodbyes []int32
	failWith error
}

func newFakeServer(list ...string) *fakeServer {
	first := func(int) int { return 0 }
	return &fakeServer{reg: session.NewRegistry(words.New(list...), first)}
}

func (f *fakeServer) Exchange(_ context.Context, req ipc.Request) (ipc.Response, error) {
	if f.failWith != nil {
		return ipc.Response{}, f.failWith
	}
	f.sent = append(f.sent, req)
	var s *session.Session
	if req.Registered {
		var err error
		if s, err = f.reg.Lookup(session.ID(req.ClientID)); err != nil {
			return ipc.Response{}, err
		}
	} else {
		s = f.reg.Register()
	}
	if req.Status == game.StatusNew {
		s.NewGame()
	} else {
		_, _, _ = s.Guess(req.Guess)
	}
	return ipc.Response{ClientID: int32(s.ID), Status: s.Game.Status, Errors: s.Game.Errors, Word: s.Game.View()}, nil
}

func (f *fakeServer) Goodbye(_ context.Context, id int32) error {
	f.goodbyes = append(f.goodbyes, id)
	f.reg.Remove(session.ID(id))
	return nil
}

func TestClient_RegistersOnFirstGame(t *testing.T) {
	srv := newFakeServer("CAT")
	c := New(srv)
	if _, ok := c.ID(); ok {
		t.Fatalf("client should start unregistered")
	}

	r, err := c.NewGame(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != game.StatusOpen || r.Word != "___" {
		t.Fatalf("round = %+v", r)
	}
	if id, ok := c.ID(); !ok || id != 0 {
		t.Fatalf("id = %d, %v", id, ok)
	}
	if srv.sent[0].Registered {
		t.Fatalf("first request must be unregistered")
	}

	if _, err := c.Guess(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if last := srv.sent[len(srv.sent)-1]; !last.Registered || last.ClientID != 0 || last.Guess != 'A' {
		t.Fatalf("guess request = %+v", last)
	}
}

func TestClient_ValidationNeverSends(t *testing.T) {
	srv := newFakeServer("CAT")
	c := New(srv)
	if _, err := c.NewGame(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Guess(context.Background(), "c\n"); err != nil {
		t.Fatal(err)
	}
	sent := len(srv.sent)

	cases := []struct {
		in   string
		want error
	}{
		{"", ErrNotSingleLetter},
		{"ab", ErrNotSingleLetter},
		{"7", ErrNotLetter},
		{"?", ErrNotLetter},
		{"c", ErrAlreadyTried},
		{"C", ErrAlreadyTried},
	}
	for _, tc := range cases {
		if _, err := c.Guess(context.Background(), tc.in); !errors.Is(err, tc.want) {
			t.Errorf("Guess(%q) = %v, want %v", tc.in, err, tc.want)
		}
	}
	if len(srv.sent) != sent {
		t.Fatalf("invalid guesses reached the server")
	}
	if got := string(c.Round().Tried); got != "C" {
		t.Fatalf("tried = %q", got)
	}
}

func TestClient_GuessWithoutRound(t *testing.T) {
	c := New(newFakeServer("CAT"))
	if _, err := c.Guess(context.Background(), "a"); !errors.Is(err, ErrNoOpenRound) {
		t.Fatalf("err = %v", err)
	}
}

func TestClient_QuitOnlyWhenRegistered(t *testing.T) {
	srv := newFakeServer("CAT")
	c := New(srv)
	if err := c.Quit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(srv.goodbyes) != 0 {
		t.Fatalf("unregistered client said goodbye")
	}

	_, _ = c.NewGame(context.Background())
	if err := c.Quit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(srv.goodbyes) != 1 || srv.reg.Len() != 0 {
		t.Fatalf("goodbyes=%v sessions=%d", srv.goodbyes, srv.reg.Len())
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := newFakeServer("CAT")
	srv.failWith = ipc.ErrShutdown
	c := New(srv)
	if _, err := c.NewGame(context.Background()); !errors.Is(err, ipc.ErrShutdown) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := c.ID(); ok {
		t.Fatalf("client registered without a response")
	}
}

func play(t *testing.T, srv *fakeServer, input string) (Tally, string, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out bytes.Buffer
	tally, err := Play(ctx, New(srv), strings.NewReader(input), &out)
	return tally, out.String(), err
}

func TestPlay_WinThenExhaust(t *testing.T) {
	tally, out, err := play(t, newFakeServer("CAT"), "ca\nc\n1\nc\nt\na\ny\n")
	if err != nil {
		t.Fatal(err)
	}
	if tally != (Tally{Won: 1}) {
		t.Fatalf("tally = %+v", tally)
	}
	for _, want := range []string{
		"Secret word: ___",
		"Please enter only one letter.",
		"Please enter a valid letter.",
		"Please enter letter you have not tried yet.",
		"The word was CAT",
		"Congratulations! You figured it out.",
		"You have now won 1 games and lost 0.",
		"You played all the available words.",
		"You have won 1 games and lost 0. Bye bye!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlay_LoseAndStop(t *testing.T) {
	tally, out, err := play(t, newFakeServer("CAT", "DOG"), "b\nd\ne\nf\ng\nh\ni\nj\nk\nn\n")
	if err != nil {
		t.Fatal(err)
	}
	if tally != (Tally{Lost: 1}) {
		t.Fatalf("tally = %+v", tally)
	}
	if !strings.Contains(out, "Game Over! Want to try again?") || !strings.Contains(out, "The word was CAT") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "You played all the available words.") {
		t.Fatalf("player stopped before the corpus ran out")
	}
}

func TestPlay_EOFMidRound(t *testing.T) {
	_, _, err := play(t, newFakeServer("CAT"), "a\n")
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v", err)
	}
}

func TestPlay_CancelledPrompt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan error, 1)
	go func() {
		_, err := Play(ctx, New(newFakeServer("CAT")), pr, io.Discard)
		done <- err
	}()
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
