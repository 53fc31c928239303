package sweep

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/mutsweep/internal/ir"
)

// Metrics counts sweep progress. A nil *Metrics records nothing.
type Metrics struct {
	combos       *prometheus.CounterVec
	seeds        *prometheus.CounterVec
	seedDuration prometheus.Histogram
	attempts     prometheus.Histogram
}

// NewMetrics registers sweep metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		combos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mutsweep",
			Name:      "combos_total",
			Help:      "Combos evaluated, by outcome.",
		}, []string{"outcome"}),
		seeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mutsweep",
			Name:      "seeds_total",
			Help:      "Seeds processed, by status (swept, skipped).",
		}, []string{"status"}),
		seedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mutsweep",
			Name:      "seed_duration_seconds",
			Help:      "Wall time to sweep one seed.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mutsweep",
			Name:      "attempts_to_failure",
			Help:      "Candidates consumed before the first failure.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(m.combos, m.seeds, m.seedDuration, m.attempts)
	return m
}

func (m *Metrics) observeResult(r ir.RunResult) {
	if m == nil {
		return
	}
	m.combos.WithLabelValues(string(r.Type)).Inc()
	if r.Failed() {
		m.attempts.Observe(float64(r.Attempts))
	}
}

func (m *Metrics) observeSeed(skipped bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	if skipped {
		m.seeds.WithLabelValues("skipped").Inc()
		return
	}
	m.seeds.WithLabelValues("swept").Inc()
	m.seedDuration.Observe(elapsed.Seconds())
}
