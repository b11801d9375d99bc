// internal/admin/server.go
//
// Read-only admin HTTP API of the hangman server.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Diagnostics (token required when a secret is configured):
//     /sessions, /stats, /metrics.
//
// Notes:
//   - Handlers only read the snapshot the game loop publishes; they never
//     touch the mailbox or the registry.

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/session"
	"github.com/robalobadob/hangman/internal/store"
)

// Source is what the admin API reports on.
type Source interface {
	RunID() string
	Sessions() []session.Info
	Totals(ctx context.Context) (store.Totals, error)
}

// Server bundles router and the HTTP listener.
type Server struct {
	r      *chi.Mux
	src    Source
	secret []byte
	http   *http.Server
}

// New constructs a Server and registers routes. An empty secret leaves
// the diagnostics endpoints open.
func New(src Source, gatherer prometheus.Gatherer, secret string) *Server {
	s := &Server{r: chi.NewRouter(), src: src, secret: []byte(secret)}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                // add X-Request-ID
	s.r.Use(chimw.Recoverer)                // recover from panics
	s.r.Use(chimw.Timeout(5 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                // default JSON responses

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"hangman","endpoints":["/health","/sessions","/stats","/metrics"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Group(func(r chi.Router) {
		if len(s.secret) > 0 {
			r.Use(s.requireAuth())
		}
		r.Get("/sessions", s.handleSessions)
		r.Get("/stats", s.handleStats)
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	s.http = &http.Server{Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Start serves HTTP on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	log.Info().Str("addr", addr).Msg("admin api listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error { return s.http.Shutdown(ctx) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	infos := s.src.Sessions()
	if infos == nil {
		infos = []session.Info{}
	}
	_ = json.NewEncoder(w).Encode(infos)
}

type statsRes struct {
	Run      string       `json:"run"`
	Sessions int          `json:"sessions"`
	Totals   store.Totals `json:"totals"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.src.Totals(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("read totals")
		writeError(w, http.StatusInternalServerError, "store_error")
		return
	}
	_ = json.NewEncoder(w).Encode(statsRes{
		Run:      s.src.RunID(),
		Sessions: len(s.src.Sessions()),
		Totals:   totals,
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
