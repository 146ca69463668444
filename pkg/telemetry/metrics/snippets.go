package metrics

import (
	"time"

	"tagbot/taglang/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SnippetMetrics tracks the snippet library.
//
// Metrics:
//   - tag_snippet_operations_total: operations by kind and status
//   - tag_snippet_operation_duration_seconds: operation latency
//   - tag_snippets_pruned_total: snippets removed by retention
//   - tag_snippets_stored: snippets currently stored
type SnippetMetrics struct {
	opsTotal    *prometheus.CounterVec
	opDuration  *prometheus.HistogramVec
	prunedTotal *prometheus.CounterVec
	stored      prometheus.Gauge
}

// NewSnippetMetrics creates and registers snippet metrics with the provided registry.
func NewSnippetMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SnippetMetrics {
	sm := &SnippetMetrics{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "snippet_operations_total",
				Help:      "Total number of snippet library operations",
			},
			[]string{"op", "status"},
		),

		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "snippet_operation_duration_seconds",
				Help:      "Duration of snippet library operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),

		prunedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "snippets_pruned_total",
				Help:      "Total number of snippets removed by retention",
			},
			[]string{"reason"},
		),

		stored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "snippets_stored",
				Help:      "Number of snippets currently stored",
			},
		),
	}

	registry.MustRegister(
		sm.opsTotal,
		sm.opDuration,
		sm.prunedTotal,
		sm.stored,
	)

	return sm
}

// RecordOp records one operation.
func (sm *SnippetMetrics) RecordOp(op, status string, duration time.Duration) {
	sm.opsTotal.WithLabelValues(op, status).Inc()
	sm.opDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordPruned adds n pruned snippets under reason ("age" or "count").
func (sm *SnippetMetrics) RecordPruned(reason string, n int64) {
	sm.prunedTotal.WithLabelValues(reason).Add(float64(n))
}

// SetStored sets the stored snippet gauge.
func (sm *SnippetMetrics) SetStored(n int64) {
	sm.stored.Set(float64(n))
}
