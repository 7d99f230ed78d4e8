package summary

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records cache decisions and model call outcomes. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	decisions  *prometheus.CounterVec
	failures   *prometheus.CounterVec
	generation prometheus.Histogram
}

// NewMetrics creates the summary metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "synopsis",
				Subsystem: "summary",
				Name:      "decisions_total",
				Help:      "Cache decisions by outcome (miss, hit, update).",
			},
			[]string{"decision"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "synopsis",
				Subsystem: "summary",
				Name:      "failures_total",
				Help:      "Failed summary requests by error kind.",
			},
			[]string{"kind"},
		),
		generation: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "synopsis",
				Subsystem: "summary",
				Name:      "generation_seconds",
				Help:      "Latency of language model calls in seconds.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
		),
	}
	reg.MustRegister(m.decisions, m.failures, m.generation)
	return m
}

func (m *Metrics) observeDecision(d Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(d.String()).Inc()
}

func (m *Metrics) observeFailure(k Kind) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(k.String()).Inc()
}

func (m *Metrics) observeGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.generation.Observe(d.Seconds())
}
