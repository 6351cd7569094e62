package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for batch runs
type Metrics struct {
	items         *prometheus.CounterVec // by status (success/failed)
	retries       prometheus.Counter
	runs          *prometheus.CounterVec // by outcome (completed/early_exit)
	chunkDuration prometheus.Histogram
}

// NewMetrics creates batch metrics and registers them with reg. A nil
// registry returns nil metrics, which disables recording.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "items_total",
			Help:      "Total number of batch items processed",
		}, []string{"status"}),

		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "retries_total",
			Help:      "Total number of retried item attempts",
		}),

		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Total number of batch runs",
		}, []string{"outcome"}),

		chunkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "chunk_duration_seconds",
			Help:      "Time spent processing one chunk",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		}),
	}

	for _, c := range []prometheus.Collector{m.items, m.retries, m.runs, m.chunkDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observeChunk(duration time.Duration, succeeded, failed int) {
	if m == nil {
		return
	}

	m.items.WithLabelValues("success").Add(float64(succeeded))
	m.items.WithLabelValues("failed").Add(float64(failed))
	m.chunkDuration.Observe(duration.Seconds())
}

func (m *Metrics) observeRun(earlyExit bool, retries int64) {
	if m == nil {
		return
	}

	outcome := "completed"
	if earlyExit {
		outcome = "early_exit"
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.retries.Add(float64(retries))
}
