// Package metrics defines the Prometheus collectors the hangman server
// updates while it handles exchanges.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hangman"

// Exchange kinds.
const (
	KindRegister = "register"
	KindNewGame  = "new_game"
	KindGuess    = "guess"
	KindGoodbye  = "goodbye"
)

// Metrics holds the server's collectors.
type Metrics struct {
	exchanges *prometheus.CounterVec
	rounds    *prometheus.CounterVec
	sessions  prometheus.Gauge
	handling  prometheus.Histogram
}

// New registers the collectors with reg. A nil reg uses a fresh registry,
// which keeps tests and multiple servers in one process independent.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		exchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Mailbox exchanges handled, by kind",
		}, []string{"kind"}),

		rounds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Rounds ended, by outcome (won, lost, impossible)",
		}, []string{"outcome"}),

		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Registered client sessions",
		}),

		handling: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exchange_duration_seconds",
			Help:      "Time between reading a request and posting its answer",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
}

// Exchange counts one handled exchange of the given kind.
func (m *Metrics) Exchange(kind string, took time.Duration) {
	m.exchanges.WithLabelValues(kind).Inc()
	m.handling.Observe(took.Seconds())
}

// RoundEnded counts a round outcome.
func (m *Metrics) RoundEnded(outcome string) { m.rounds.WithLabelValues(outcome).Inc() }

// Sessions sets the number of live sessions.
func (m *Metrics) Sessions(n int) { m.sessions.Set(float64(n)) }
