package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sample returns the value of the series of family name whose labels
// include want, or -1.
func sample(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v != lp.GetValue() {
					continue series
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return -1
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Exchange(KindRegister, time.Millisecond)
	m.Exchange(KindGuess, time.Millisecond)
	m.Exchange(KindGuess, time.Millisecond)
	m.RoundEnded("won")
	m.Sessions(3)

	cases := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"hangman_exchanges_total", map[string]string{"kind": KindGuess}, 2},
		{"hangman_exchanges_total", map[string]string{"kind": KindRegister}, 1},
		{"hangman_rounds_total", map[string]string{"outcome": "won"}, 1},
		{"hangman_active_sessions", nil, 3},
		{"hangman_exchange_duration_seconds", nil, 3},
	}
	for _, tc := range cases {
		if got := sample(t, reg, tc.name, tc.labels); got != tc.want {
			t.Errorf("%s%v = %v, want %v", tc.name, tc.labels, got, tc.want)
		}
	}
}

func TestNew_NilRegistererIsIsolated(t *testing.T) {
	// two servers in one process must not collide on registration
	New(nil)
	New(nil)
}
