// Package config loads process-wide configuration from the environment.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Scorer provider names recognized in SCORER_PROVIDER.
const (
	ScorerProviderFinBERT = "finbert"
	ScorerProviderOpenAI  = "openai"
	ScorerProviderNone    = "none"
)

const sourceWeightParts = 2

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`

	// Weighting policy.
	HalfLifeHours       float64  `env:"HALF_LIFE_HOURS" envDefault:"24.0"`
	DefaultSourceWeight float64  `env:"DEFAULT_SOURCE_WEIGHT" envDefault:"0.75"`
	SourceWeights       []string `env:"SOURCE_WEIGHTS" envSeparator:","`

	// Collection bounds.
	MaxItems            int           `env:"MAX_ITEMS" envDefault:"40"`
	LookbackDaysDefault int           `env:"LOOKBACK_DAYS_DEFAULT" envDefault:"5"`
	LookbackDaysMax     int           `env:"LOOKBACK_DAYS_MAX" envDefault:"14"`
	HTTPFetchTimeout    time.Duration `env:"HTTP_FETCH_TIMEOUT" envDefault:"20s"`
	UserAgent           string        `env:"USER_AGENT" envDefault:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"`

	// External call limits.
	MaxConcurrentCalls int `env:"MAX_CONCURRENT_CALLS" envDefault:"4"`
	RateLimitRPS       int `env:"RATE_LIMIT_RPS" envDefault:"1"`

	// Sentiment scorer.
	ScorerProvider string `env:"SCORER_PROVIDER" envDefault:"none"`
	FinBERTURL     string `env:"FINBERT_URL"`

	// LLM (OpenAI-compatible) settings, shared by the openai scorer and the
	// rationale explainer.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	RationalesEnabled bool `env:"RATIONALES_ENABLED" envDefault:"true"`

	// Optional article body extraction for items with empty text.
	BodyEnrichmentEnabled bool `env:"BODY_ENRICHMENT_ENABLED" envDefault:"false"`
	BodyMaxChars          int  `env:"BODY_MAX_CHARS" envDefault:"5000"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SourceWeightOverrides parses SOURCE_WEIGHTS entries of the form
// "domain:weight". Malformed entries are skipped.
func (c *Config) SourceWeightOverrides() map[string]float64 {
	overrides := make(map[string]float64, len(c.SourceWeights))

	for _, entry := range c.SourceWeights {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", sourceWeightParts)
		if len(parts) != sourceWeightParts {
			continue
		}

		w, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}

		domain := strings.ToLower(strings.TrimSpace(parts[0]))
		if domain == "" {
			continue
		}

		overrides[domain] = w
	}

	return overrides
}
