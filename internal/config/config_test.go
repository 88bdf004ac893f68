package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 24.0, cfg.HalfLifeHours, 1e-9)
	assert.InDelta(t, 0.75, cfg.DefaultSourceWeight, 1e-9)
	assert.Equal(t, 40, cfg.MaxItems)
	assert.Equal(t, 5, cfg.LookbackDaysDefault)
	assert.Equal(t, 14, cfg.LookbackDaysMax)
	assert.Equal(t, 4, cfg.MaxConcurrentCalls)
	assert.Equal(t, ScorerProviderNone, cfg.ScorerProvider)
	assert.True(t, cfg.RationalesEnabled)
	assert.False(t, cfg.BodyEnrichmentEnabled)
}

func TestSourceWeightOverrides(t *testing.T) {
	cfg := &Config{SourceWeights: []string{
		"reuters.com:0.99",
		" Bloomberg.com : 0.9 ",
		"bad-entry",
		"nope:abc",
		":0.5",
	}}

	overrides := cfg.SourceWeightOverrides()

	assert.Len(t, overrides, 2)
	assert.InDelta(t, 0.99, overrides["reuters.com"], 1e-9)
	assert.InDelta(t, 0.9, overrides["bloomberg.com"], 1e-9)
}
