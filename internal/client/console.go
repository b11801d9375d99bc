package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/robalobadob/hangman/internal/game"
)

// Tally counts finished rounds.
type Tally struct {
	Won  int
	Lost int
}

var reprompts = map[error]string{
	ErrNotSingleLetter: "Please enter only one letter.",
	ErrNotLetter:       "Please enter a valid letter.",
	ErrAlreadyTried:    "Please enter letter you have not tried yet.",
}

// Play runs the interactive game on in/out until the player stops, the
// corpus is exhausted or an error occurs. Input is read on its own
// goroutine so a cancelled ctx interrupts a pending prompt.
func Play(ctx context.Context, c *Client, in io.Reader, out io.Writer) (Tally, error) {
	var tally Tally
	lines := readLines(ctx, in)

	round, err := c.NewGame(ctx)
	for err == nil {
		if round.Status == game.StatusImpossible {
			fmt.Fprintln(out, "You played all the available words.")
			break
		}

		fmt.Fprint(out, picture(round.Errors))
		if round.Status == game.StatusOpen {
			fmt.Fprintf(out, "\n\n Secret word: %s\n You guessed: %s\n\n", round.Word, round.Tried)
			round, err = guess(ctx, c, lines, out)
			continue
		}

		fmt.Fprintf(out, "The word was %s\n", round.Word)
		switch round.Status {
		case game.StatusWon:
			fmt.Fprintln(out, "Congratulations! You figured it out.")
			tally.Won++
		case game.StatusLost:
			fmt.Fprintln(out, "Game Over! Want to try again?")
			tally.Lost++
		}
		fmt.Fprintf(out, "You have now won %d games and lost %d.\n", tally.Won, tally.Lost)
		fmt.Fprintln(out, "Press 'y' to start a new game or 'n' to stop playing.")

		answer, rerr := next(ctx, lines)
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return tally, rerr
		}
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			break
		}
		round, err = c.NewGame(ctx)
	}
	if err != nil {
		return tally, err
	}

	fmt.Fprintf(out, "You have won %d games and lost %d. Bye bye!\n", tally.Won, tally.Lost)
	return tally, nil
}

// guess prompts until a valid letter was sent.
func guess(ctx context.Context, c *Client, lines <-chan string, out io.Writer) (Round, error) {
	for {
		fmt.Fprint(out, "Your guess? ")
		line, err := next(ctx, lines)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("read guess: %w", io.ErrUnexpectedEOF)
			}
			return c.Round(), err
		}
		round, err := c.Guess(ctx, line)
		if msg, ok := reprompts[err]; ok {
			fmt.Fprintln(out, msg)
			continue
		}
		return round, err
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func next(ctx context.Context, lines <-chan string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}
