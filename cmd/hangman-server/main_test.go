package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/words"
)

func TestLoadCorpus_Stdin(t *testing.T) {
	var out bytes.Buffer
	c, err := loadCorpus(context.Background(), nil, strings.NewReader("cat\ndog\n"), &out)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d", c.Len())
	}
	for _, want := range []string{
		"Please enter the game dictionary and finish with EOF",
		"Successfully read the dictionary. Ready.",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestLoadCorpus_SignalWhileReadingStdin(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := loadCorpus(ctx, nil, pr, io.Discard)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("stdin read did not stop")
	}
}

func TestServe_AdminListenFailureIsAnError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer busy.Close()

	cfg := config.Default()
	cfg.Shm.Dir = t.TempDir()
	cfg.Shm.Name = "admin-fail"
	cfg.Admin.Addr = busy.Addr().String()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = serve(ctx, cfg, words.New("CAT"), false)
	if err == nil || !strings.Contains(err.Error(), "admin api") {
		t.Fatalf("serve returned %v, want the admin listen error", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("serve only stopped at the test deadline")
	}
}
