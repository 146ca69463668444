package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/snippets"
	"tagbot/taglang/pkg/telemetry/metrics"
)

// Result reports what one pruning pass removed.
type Result struct {
	ByAge   int64 `json:"by_age"`
	ByCount int64 `json:"by_count"`
}

// Total returns the number of snippets removed.
func (r Result) Total() int64 {
	return r.ByAge + r.ByCount
}

// Pruner enforces retention on the snippet store.
type Pruner struct {
	storage snippets.Storage
	config  config.RetentionConfig
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

// NewPruner creates a pruner. metrics and logger may be nil.
func NewPruner(storage snippets.Storage, cfg config.RetentionConfig, m *metrics.Collector, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		storage: storage,
		config:  cfg,
		metrics: m,
		logger:  logger.With("component", "snippets.retention"),
		now:     time.Now,
	}
}

// Prune removes snippets in two phases:
//  1. Age: snippets with no activity for Days days.
//  2. Count: when more than MaxRecords remain, the least recently active.
//
// A zero Days or MaxRecords disables that phase.
func (p *Pruner) Prune(ctx context.Context) (Result, error) {
	var res Result

	if p.config.Days > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.Days)
		n, err := p.storage.DeleteUnusedSince(ctx, cutoff)
		if err != nil {
			return res, fmt.Errorf("prune by age failed: %w", err)
		}
		res.ByAge = n
		p.metrics.RecordPruned("age", n)
		p.logger.Debug("pruned snippets by age",
			"deleted_count", n,
			"retention_days", p.config.Days,
			"cutoff_time", cutoff,
		)
	}

	if p.config.MaxRecords > 0 {
		n, err := p.storage.DeleteOldest(ctx, p.config.MaxRecords)
		if err != nil {
			return res, fmt.Errorf("prune by count failed: %w", err)
		}
		res.ByCount = n
		p.metrics.RecordPruned("count", n)
		p.logger.Debug("pruned snippets by count",
			"deleted_count", n,
			"max_records", p.config.MaxRecords,
		)
	}

	if count, err := p.storage.Count(ctx); err == nil {
		p.metrics.SetStoredSnippets(count)
	}

	if res.Total() > 0 {
		p.logger.Info("snippet pruning completed",
			"by_age", res.ByAge,
			"by_count", res.ByCount,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}
	return res, nil
}
