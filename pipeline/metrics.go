package pipeline

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records the outcome of every run passing through it.
type Metrics struct {
	next     Runner
	runs     *prometheus.CounterVec
	retries  prometheus.Counter
	duration *prometheus.HistogramVec
}

// NewMetrics wraps next and registers the run collectors with reg.
func NewMetrics(next Runner, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		next: next,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testgen",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by result status and final selector validation status.",
		}, []string{"status", "validation"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "testgen",
			Subsystem: "pipeline",
			Name:      "retries_total",
			Help:      "Runs that used their corrective retry.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "testgen",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.retries, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Generate runs req and records its outcome.
func (m *Metrics) Generate(ctx context.Context, req Request) Result {
	start := time.Now()
	res := m.next.Generate(ctx, req)

	validation := "none"
	if res.ValidationReport != nil {
		validation = string(res.ValidationReport.Status)
	}
	m.runs.WithLabelValues(string(res.Status), validation).Inc()
	m.duration.WithLabelValues(string(res.Status)).Observe(time.Since(start).Seconds())
	if res.Retried {
		m.retries.Inc()
	}
	return res
}
