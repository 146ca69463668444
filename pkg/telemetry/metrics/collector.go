package metrics

import (
	"sync"
	"time"

	"tagbot/taglang/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns every Prometheus metric of the tag service. It manages
// registration and gives components one place to record into.
//
// A nil *Collector is valid and records nothing, so library code can take
// one unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	parseMetrics   *ParseMetrics
	snippetMetrics *SnippetMetrics
	httpMetrics    *HTTPMetrics

	// routes bounds the number of distinct route labels.
	routes *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created
// and the Go runtime and process collectors are added to it.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "tag"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		parseMetrics:   NewParseMetrics(cfg, registry),
		snippetMetrics: NewSnippetMetrics(cfg, registry),
		httpMetrics:    NewHTTPMetrics(cfg, registry),
		routes:         NewCardinalityLimiter(64),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordParse records one parse.
//
// Parameters:
//   - origin: where the source came from ("cli", "http", "ws", "snippet")
//   - outcome: "ok", "syntax_error" or "structural_error"
//   - duration: time spent recognizing and building
//   - sourceBytes: length of the source text
//   - nodes: number of AST nodes produced (0 on failure)
func (c *Collector) RecordParse(origin, outcome string, duration time.Duration, sourceBytes, nodes int) {
	if !c.enabled() {
		return
	}
	c.parseMetrics.Record(origin, outcome, duration, sourceBytes, nodes)
}

// RecordSnippetOp records a snippet library operation.
//
// Parameters:
//   - op: "save", "get", "compile", "delete", "list"
//   - status: "ok", "not_found", "invalid" or "error"
func (c *Collector) RecordSnippetOp(op, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.snippetMetrics.RecordOp(op, status, duration)
}

// RecordPruned records snippets removed by retention.
func (c *Collector) RecordPruned(reason string, n int64) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.snippetMetrics.RecordPruned(reason, n)
}

// SetStoredSnippets sets the gauge of snippets currently stored.
func (c *Collector) SetStoredSnippets(n int64) {
	if !c.enabled() {
		return
	}
	c.snippetMetrics.SetStored(n)
}

// RecordHTTPRequest records a served HTTP request. Routes beyond the
// cardinality limit are aggregated as "other".
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	if !c.routes.Allow(route) {
		route = "other"
	}
	c.httpMetrics.Record(method, route, status, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label value may be used: it was seen before or
// the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
