// Package pipeline runs the aggregation stages over collected items:
// deduplication, concurrent scoring and enrichment, weighting, rationale
// reconciliation, and fusion into one overall sentiment signal.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketpulse/sentiment/internal/core/domain"
	"github.com/marketpulse/sentiment/internal/dedup"
	"github.com/marketpulse/sentiment/internal/observability"
	"github.com/marketpulse/sentiment/internal/rationale"
	"github.com/marketpulse/sentiment/internal/scoring"
	"github.com/marketpulse/sentiment/internal/weights"
)

const (
	// scoreChunkSize is the number of texts sent to the scorer per call.
	// Chunks are dispatched concurrently under the semaphore cap and written
	// back positionally, so input order is preserved.
	scoreChunkSize = 16

	defaultMaxConcurrent = 4
)

// Enricher optionally backfills an item's body text before scoring.
type Enricher interface {
	Enrich(ctx context.Context, it *domain.Item)
}

// Result is the final packaged sentiment signal for one request.
type Result struct {
	Ticker       string        `json:"ticker"`
	AsOf         time.Time     `json:"as_of"`
	LookbackDays int           `json:"lookback_days"`
	OverallScore float64       `json:"overall_score"`
	NItems       int           `json:"n_items"`
	Items        []domain.Item `json:"items"`
}

type Pipeline struct {
	scorer        scoring.Scorer
	engine        *weights.Engine
	reconciler    *rationale.Reconciler
	enricher      Enricher
	maxConcurrent int
	logger        *zerolog.Logger
	now           func() time.Time
}

func New(scorer scoring.Scorer, engine *weights.Engine, reconciler *rationale.Reconciler,
	enricher Enricher, maxConcurrent int, logger *zerolog.Logger,
) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	return &Pipeline{
		scorer:        scorer,
		engine:        engine,
		reconciler:    reconciler,
		enricher:      enricher,
		maxConcurrent: maxConcurrent,
		logger:        logger,
		now:           time.Now,
	}
}

// Analyze runs the full pipeline over collected items and packages the
// result. It never fails: every degraded collaborator has a defined fallback.
func (p *Pipeline) Analyze(ctx context.Context, ticker string, lookbackDays int,
	includeRationales bool, items []domain.Item,
) Result {
	started := p.now()
	defer func() {
		observability.AnalyzeDuration.Observe(p.now().Sub(started).Seconds())
	}()

	items = dedup.Dedupe(items)

	p.enrichBodies(ctx, items)
	p.scoreItems(ctx, items)

	for i := range items {
		p.engine.Apply(&items[i])
	}

	p.attachRationales(ctx, ticker, includeRationales, items)

	observability.AnalyzedItems.Observe(float64(len(items)))

	return Result{
		Ticker:       ticker,
		AsOf:         p.now().UTC(),
		LookbackDays: lookbackDays,
		OverallScore: Fuse(items),
		NItems:       len(items),
		Items:        items,
	}
}

// Fuse computes the weighted average of item scores: Σ weighted_score divided
// by Σ combined_weight, 0.0 when the weight sum is zero, rounded to 4 places.
func Fuse(items []domain.Item) float64 {
	var weightedSum, weightSum float64

	for i := range items {
		weightedSum += items[i].WeightedScore
		weightSum += items[i].CombinedWeight
	}

	if weightSum == 0 {
		return 0.0
	}

	return domain.Round4(weightedSum / weightSum)
}

// enrichBodies runs the optional body fetcher for items with empty text,
// bounded by the concurrency cap. Each item is owned by its own task.
func (p *Pipeline) enrichBodies(ctx context.Context, items []domain.Item) {
	if p.enricher == nil {
		return
	}

	sem := make(chan struct{}, p.maxConcurrent)

	var wg sync.WaitGroup

	for i := range items {
		if items[i].Text != "" {
			continue
		}

		wg.Add(1)

		go func(it *domain.Item) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			p.enricher.Enrich(ctx, it)
		}(&items[i])
	}

	wg.Wait()
}

// scoreItems scores all items in chunks dispatched concurrently under the
// semaphore cap. Results are written back by chunk offset, preserving input
// order. A failing chunk degrades to neutral results for that chunk only.
func (p *Pipeline) scoreItems(ctx context.Context, items []domain.Item) {
	if len(items) == 0 {
		return
	}

	texts := make([]scoring.Text, len(items))
	for i := range items {
		texts[i] = scoring.Text{Title: items[i].Title, Body: items[i].Text}
	}

	results := make([]scoring.Result, len(items))

	sem := make(chan struct{}, p.maxConcurrent)

	var wg sync.WaitGroup

	for offset := 0; offset < len(texts); offset += scoreChunkSize {
		end := offset + scoreChunkSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)

		go func(offset int, chunk []scoring.Text) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			p.scoreChunk(ctx, offset, chunk, results)
		}(offset, texts[offset:end])
	}

	wg.Wait()

	for i := range items {
		items[i].Label = results[i].Label
		items[i].ProbPositive = results[i].ProbPositive
		items[i].ProbNeutral = results[i].ProbNeutral
		items[i].ProbNegative = results[i].ProbNegative
		items[i].Score = results[i].Score
	}
}

func (p *Pipeline) scoreChunk(ctx context.Context, offset int, chunk []scoring.Text, results []scoring.Result) {
	scored, err := p.scorer.ScoreBatch(ctx, chunk)
	if err != nil {
		observability.ScorerFallbacks.Inc()
		p.logger.Warn().Err(err).Int("offset", offset).Int("size", len(chunk)).
			Msg("scorer failed, neutral fallback for chunk")

		scored = nil
	}

	for i := range chunk {
		if i < len(scored) {
			results[offset+i] = scored[i]
			continue
		}

		// Shorter-than-input responses are backfilled; longer ones are
		// truncated by never reading past the chunk.
		results[offset+i] = scoring.NeutralResult()
	}
}

// attachRationales guarantees a non-null rationale string on every item.
func (p *Pipeline) attachRationales(ctx context.Context, ticker string, includeRationales bool, items []domain.Item) {
	if !includeRationales {
		for i := range items {
			items[i].Rationale = ""
		}

		return
	}

	rationales := p.reconciler.Rationales(ctx, items, ticker)
	for i := range items {
		items[i].Rationale = rationales[i]
	}
}
