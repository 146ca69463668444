package metrics

import (
	"time"

	"tagbot/taglang/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ParseMetrics tracks parser activity.
//
// Metrics:
//   - tag_parses_total: parses by origin and outcome
//   - tag_parse_duration_seconds: recognize plus build time
//   - tag_source_bytes: size of parsed sources
//   - tag_ast_nodes: size of produced trees
type ParseMetrics struct {
	parsesTotal   *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	sourceBytes   prometheus.Histogram
	astNodes      prometheus.Histogram
}

// NewParseMetrics creates and registers parse metrics with the provided registry.
func NewParseMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ParseMetrics {
	pm := &ParseMetrics{
		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parses_total",
				Help:      "Total number of tag sources parsed",
			},
			[]string{"origin", "outcome"},
		),

		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parse_duration_seconds",
				Help:      "Time spent recognizing and building a tag source",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8), // 50µs to ~0.8s
			},
			[]string{"origin"},
		),

		sourceBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "source_bytes",
				Help:      "Size of parsed tag sources in bytes",
				Buckets:   prometheus.ExponentialBuckets(16, 4, 7), // 16B to 64KB
			},
		),

		astNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ast_nodes",
				Help:      "Number of nodes in successfully built trees",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}

	registry.MustRegister(
		pm.parsesTotal,
		pm.parseDuration,
		pm.sourceBytes,
		pm.astNodes,
	)

	return pm
}

// Record records one parse.
func (pm *ParseMetrics) Record(origin, outcome string, duration time.Duration, sourceBytes, nodes int) {
	pm.parsesTotal.WithLabelValues(origin, outcome).Inc()
	pm.parseDuration.WithLabelValues(origin).Observe(duration.Seconds())
	pm.sourceBytes.Observe(float64(sourceBytes))
	if nodes > 0 {
		pm.astNodes.Observe(float64(nodes))
	}
}
