// internal/server/server.go
//
// The hangman server loop.
// Responsibilities:
//   - Serve mailbox requests one at a time, in the order clients took turns.
//   - Register new clients, deal words, apply guesses, drop leaving clients.
//   - Record finished rounds in the results ledger and update metrics.
//   - On shutdown, wake every registered client so it can exit.
//
// Notes:
//   - The registry is only touched by the goroutine running Run. The admin
//     API reads a snapshot published after each exchange.

package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/ipc"
	"github.com/robalobadob/hangman/internal/metrics"
	"github.com/robalobadob/hangman/internal/session"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

// recordTimeout bounds a single ledger write.
const recordTimeout = 2 * time.Second

// Mailbox is the server side of the rendezvous channel.
type Mailbox interface {
	AwaitRequest(ctx context.Context) (ipc.Request, error)
	Respond(resp ipc.Response) error
	ReleaseTurn() error
	Broadcast(sessions int) error
	Close() error
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Store   store.Store      // defaults to an in-memory ledger
	Metrics *metrics.Metrics // defaults to collectors on a private registry
	Picker  session.Picker   // defaults to session.DefaultPicker
}

// Server owns the word corpus, every client session and the mailbox.
type Server struct {
	mailbox  Mailbox
	registry *session.Registry
	store    store.Store
	metrics  *metrics.Metrics
	runID    string

	snapshot atomic.Pointer[[]session.Info]

	closeOnce sync.Once
	closeErr  error
}

// New builds a server dealing words from corpus over mb.
func New(corpus *words.Corpus, mb Mailbox, opts Options) *Server {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	s := &Server{
		mailbox:  mb,
		registry: session.NewRegistry(corpus, opts.Picker),
		store:    opts.Store,
		metrics:  opts.Metrics,
		runID:    uuid.NewString(),
	}
	s.publish()
	return s
}

// RunID identifies this server run in the results ledger.
func (s *Server) RunID() string { return s.runID }

// Sessions returns the live sessions as of the last completed exchange.
func (s *Server) Sessions() []session.Info { return *s.snapshot.Load() }

// Totals returns the ledger's aggregated results.
func (s *Server) Totals(ctx context.Context) (store.Totals, error) { return s.store.Totals(ctx) }

// Run serves requests until ctx is cancelled, which is a clean stop and
// returns nil, or until a request cannot be served.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Str("run", s.runID).Msg("server ready")
	for {
		req, err := s.mailbox.AwaitRequest(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("await request: %w", err)
		}

		start := time.Now()
		resp, kind, reply, err := s.handle(ctx, req)
		if err != nil {
			return err
		}
		s.metrics.Sessions(s.registry.Len())
		s.publish()

		if reply {
			err = s.mailbox.Respond(resp)
		} else {
			err = s.mailbox.ReleaseTurn()
		}
		if err != nil {
			return fmt.Errorf("answer %s: %w", kind, err)
		}

		s.metrics.Exchange(kind, time.Since(start))
	}
}

// handle applies one request to the registry. reply is false for a
// goodbye, which is answered by releasing the turn instead.
func (s *Server) handle(ctx context.Context, req ipc.Request) (resp ipc.Response, kind string, reply bool, err error) {
	if req.Terminate {
		if req.Registered {
			id := session.ID(req.ClientID)
			if _, err = s.registry.Lookup(id); err != nil {
				return ipc.Response{}, "", false, err
			}
			s.registry.Remove(id)
			log.Info().Int32("client", req.ClientID).Msg("client left")
		}
		return ipc.Response{}, metrics.KindGoodbye, false, nil
	}

	var sess *session.Session
	if req.Registered {
		if sess, err = s.registry.Lookup(session.ID(req.ClientID)); err != nil {
			return ipc.Response{}, "", false, err
		}
	} else {
		sess = s.registry.Register()
		log.Info().Int32("client", int32(sess.ID)).Int("sessions", s.registry.Len()).Msg("client registered")
	}

	if req.Status == game.StatusNew {
		kind = metrics.KindNewGame
		if status := sess.NewGame(); status == game.StatusImpossible {
			s.metrics.RoundEnded(status.String())
			log.Debug().Int32("client", int32(sess.ID)).Msg("word pool exhausted")
		}
	} else {
		kind = metrics.KindGuess
		status, finished, gerr := sess.Guess(req.Guess)
		switch {
		case errors.Is(gerr, game.ErrNotOpen):
			log.Warn().Int32("client", int32(sess.ID)).Str("status", status.String()).
				Msg("guess ignored, no open round")
		case finished:
			s.finish(ctx, sess)
		}
	}
	if !req.Registered {
		kind = metrics.KindRegister
	}

	return ipc.Response{
		ClientID: int32(sess.ID),
		Status:   sess.Game.Status,
		Errors:   sess.Game.Errors,
		Word:     sess.Game.View(),
	}, kind, true, nil
}

// finish records a round that just ended. Ledger failures only warn.
func (s *Server) finish(ctx context.Context, sess *session.Session) {
	outcome := sess.Game.Status
	s.metrics.RoundEnded(outcome.String())

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	err := s.store.Record(ctx, store.Round{
		RunID:      s.runID,
		ClientID:   int32(sess.ID),
		Number:     sess.Played,
		Word:       sess.Game.Secret,
		Outcome:    outcome,
		Errors:     sess.Game.Errors,
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Int32("client", int32(sess.ID)).Msg("record round")
	}
}

func (s *Server) publish() {
	infos := s.registry.Snapshot()
	s.snapshot.Store(&infos)
}

// Close tells every registered client that the server is going away,
// forgets all sessions and releases the mailbox. It must not run
// concurrently with Run. Only the first call does any work.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		n := s.registry.Len()
		errs := []error{s.mailbox.Broadcast(n)}
		s.registry.Clear()
		s.publish()
		s.metrics.Sessions(0)
		errs = append(errs, s.mailbox.Close())
		log.Info().Int("clients", n).Msg("server shut down")
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
