// Package collect fetches raw ticker items from upstream sources and merges
// them into one capped, time-ordered set for the pipeline.
package collect

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketpulse/sentiment/internal/core/domain"
	"github.com/marketpulse/sentiment/internal/observability"
)

const (
	logFieldCollector = "collector"
	logFieldTicker    = "ticker"
	hoursPerDay       = 24
)

// Collector fetches content-only items for a ticker within a lookback window.
type Collector interface {
	Name() string
	Fetch(ctx context.Context, ticker string, lookbackDays int) ([]domain.Item, error)
}

// Runner fans out to all collectors concurrently. A failing collector
// contributes zero items and is never fatal.
type Runner struct {
	collectors []Collector
	maxItems   int
	logger     *zerolog.Logger
	now        func() time.Time
}

func NewRunner(collectors []Collector, maxItems int, logger *zerolog.Logger) *Runner {
	return &Runner{
		collectors: collectors,
		maxItems:   maxItems,
		logger:     logger,
		now:        time.Now,
	}
}

// Run collects from every source, filters to the lookback window, sorts
// newest-first, and caps the result.
func (r *Runner) Run(ctx context.Context, ticker string, lookbackDays int) []domain.Item {
	results := make([][]domain.Item, len(r.collectors))

	var wg sync.WaitGroup

	for i, c := range r.collectors {
		wg.Add(1)

		go func(idx int, c Collector) {
			defer wg.Done()

			items, err := c.Fetch(ctx, ticker, lookbackDays)
			if err != nil {
				observability.CollectorFailures.WithLabelValues(c.Name()).Inc()
				r.logger.Warn().Err(err).
					Str(logFieldCollector, c.Name()).
					Str(logFieldTicker, ticker).
					Msg("collector failed, contributing zero items")

				return
			}

			observability.ItemsCollected.WithLabelValues(c.Name()).Add(float64(len(items)))
			results[idx] = items
		}(i, c)
	}

	wg.Wait()

	cutoff := r.now().UTC().Add(-time.Duration(lookbackDays) * hoursPerDay * time.Hour)

	all := make([]domain.Item, 0)

	for _, items := range results {
		for _, it := range items {
			if it.PublishedAt.Before(cutoff) {
				continue
			}

			all = append(all, it)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})

	if r.maxItems > 0 && len(all) > r.maxItems {
		all = all[:r.maxItems]
	}

	return all
}
