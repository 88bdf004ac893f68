// Package app wires the collectors, scorer, explainer, and pipeline together
// and exposes the analysis service consumed by the HTTP server.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/marketpulse/sentiment/internal/collect"
	"github.com/marketpulse/sentiment/internal/config"
	"github.com/marketpulse/sentiment/internal/core/llm"
	"github.com/marketpulse/sentiment/internal/enrich"
	"github.com/marketpulse/sentiment/internal/pipeline"
	"github.com/marketpulse/sentiment/internal/rationale"
	"github.com/marketpulse/sentiment/internal/scoring"
	"github.com/marketpulse/sentiment/internal/weights"
)

const logFieldProvider = "provider"

// Service runs collection followed by the analysis pipeline.
type Service struct {
	runner   *collect.Runner
	pipeline *pipeline.Pipeline
	logger   *zerolog.Logger
}

// New builds the fully wired service from configuration.
func New(cfg *config.Config, logger *zerolog.Logger) *Service {
	collectors := []collect.Collector{
		collect.NewGoogleNews(cfg.HTTPFetchTimeout, cfg.UserAgent),
		collect.NewYahooFinance(cfg.HTTPFetchTimeout, cfg.UserAgent),
		collect.NewReddit(cfg.HTTPFetchTimeout, cfg.UserAgent),
	}

	runner := collect.NewRunner(collectors, cfg.MaxItems, logger)

	engine := weights.NewEngine(weights.Config{
		HalfLifeHours:       cfg.HalfLifeHours,
		SourceTable:         weights.SourceTableWithOverrides(cfg.SourceWeightOverrides()),
		DefaultSourceWeight: cfg.DefaultSourceWeight,
	})

	var enricher pipeline.Enricher
	if cfg.BodyEnrichmentEnabled {
		enricher = enrich.NewBodyFetcher(cfg.UserAgent, cfg.BodyMaxChars, logger)
	}

	reconciler := rationale.NewReconciler(newExplainer(cfg, logger), logger)

	p := pipeline.New(newScorer(cfg, logger), engine, reconciler, enricher, cfg.MaxConcurrentCalls, logger)

	return &Service{runner: runner, pipeline: p, logger: logger}
}

// Analyze implements server.Analyzer.
func (s *Service) Analyze(ctx context.Context, ticker string, lookbackDays int,
	includeRationales bool, limit int,
) pipeline.Result {
	items := s.runner.Run(ctx, ticker, lookbackDays)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return s.pipeline.Analyze(ctx, ticker, lookbackDays, includeRationales, items)
}

func newScorer(cfg *config.Config, logger *zerolog.Logger) scoring.Scorer {
	switch cfg.ScorerProvider {
	case config.ScorerProviderFinBERT:
		if cfg.FinBERTURL == "" {
			logger.Warn().Msg("finbert scorer selected but FINBERT_URL empty, scoring disabled")

			return scoring.Neutral{}
		}

		return scoring.NewFinBERT(cfg.FinBERTURL)
	case config.ScorerProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn().Msg("openai scorer selected but OPENAI_API_KEY empty, scoring disabled")

			return scoring.Neutral{}
		}

		return scoring.NewOpenAI(llm.New(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.RateLimitRPS, logger), logger)
	case config.ScorerProviderNone:
		return scoring.Neutral{}
	default:
		logger.Warn().Str(logFieldProvider, cfg.ScorerProvider).Msg("unknown scorer provider, scoring disabled")

		return scoring.Neutral{}
	}
}

func newExplainer(cfg *config.Config, logger *zerolog.Logger) rationale.Explainer {
	if !cfg.RationalesEnabled || cfg.OpenAIAPIKey == "" {
		return nil
	}

	return rationale.NewOpenAIExplainer(llm.New(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.RateLimitRPS, logger), logger)
}
