package weights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marketpulse/sentiment/internal/core/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(Config{
		HalfLifeHours:       24.0,
		SourceTable:         DefaultSourceTable,
		DefaultSourceWeight: 0.75,
		Now:                 func() time.Time { return testNow },
	})
}

func TestRecency(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name     string
		ageHours float64
		expected float64
	}{
		{name: "fresh", ageHours: 0, expected: 1.0},
		{name: "one half-life", ageHours: 24, expected: 0.5},
		{name: "two half-lives", ageHours: 48, expected: 0.25},
		{name: "future timestamp floors at zero age", ageHours: -12, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publishedAt := testNow.Add(-time.Duration(tt.ageHours * float64(time.Hour)))
			assert.InDelta(t, tt.expected, e.Recency(publishedAt), 1e-9)
		})
	}
}

func TestRecencyNeverExceedsBounds(t *testing.T) {
	e := testEngine()

	for _, age := range []float64{-1000, 0, 1, 100, 100000} {
		w := e.Recency(testNow.Add(-time.Duration(age * float64(time.Hour))))
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
	}
}

func TestSource(t *testing.T) {
	e := testEngine()

	assert.InDelta(t, 1.00, e.Source("reuters.com"), 1e-9)
	assert.InDelta(t, 1.00, e.Source("www.reuters.com"), 1e-9)
	assert.InDelta(t, 0.92, e.Source("cnbc.com"), 1e-9)
	assert.InDelta(t, 0.75, e.Source("unknown-blog.net"), 1e-9)
	assert.InDelta(t, 0.75, e.Source(""), 1e-9)
}

func TestSourceClampsTableValues(t *testing.T) {
	e := NewEngine(Config{
		HalfLifeHours:       24,
		SourceTable:         map[string]float64{"broken.com": 3.5},
		DefaultSourceWeight: 1.7,
		Now:                 func() time.Time { return testNow },
	})

	assert.InDelta(t, 1.0, e.Source("broken.com"), 1e-9)
	assert.InDelta(t, 1.0, e.Source("other.com"), 1e-9)
}

func TestEngagement(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name     string
		meta     domain.Metadata
		expected float64
	}{
		{
			name:     "article gets neutral baseline",
			meta:     domain.Metadata{"source": "googlenews"},
			expected: 0.5,
		},
		{
			name:     "nil metadata gets neutral baseline",
			meta:     nil,
			expected: 0.5,
		},
		{
			name:     "reddit zero engagement",
			meta:     domain.Metadata{"source": "reddit", "ups": 0, "num_comments": 0},
			expected: 0.0,
		},
		{
			name:     "reddit missing counters read as zero",
			meta:     domain.Metadata{"source": "reddit"},
			expected: 0.0,
		},
		{
			name:     "reddit malformed counters read as zero",
			meta:     domain.Metadata{"source": "reddit", "ups": "lots", "num_comments": []int{1}},
			expected: 0.0,
		},
		{
			name:     "reddit negative counters read as zero",
			meta:     domain.Metadata{"source": "reddit", "ups": -5, "num_comments": -2},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := &domain.Item{Metadata: tt.meta}
			assert.InDelta(t, tt.expected, e.Engagement(it), 1e-9)
		})
	}
}

func TestEngagementViralPostClamped(t *testing.T) {
	e := testEngine()
	it := &domain.Item{Metadata: domain.Metadata{"source": "reddit", "ups": 10000000, "num_comments": 10000000}}

	w := e.Engagement(it)

	assert.LessOrEqual(t, w, 1.0)
	assert.Greater(t, w, 0.9)
}

func TestCombine(t *testing.T) {
	assert.InDelta(t, 1.0, Combine(1, 1, 1), 1e-9)
	assert.InDelta(t, 0.0, Combine(0, 0, 0), 1e-9)
	assert.InDelta(t, 0.5*0.5+0.3*0.75+0.2*0.5, Combine(0.5, 0.75, 0.5), 1e-9)
}

func TestApplyBoundsHoldUnderMalformedMetadata(t *testing.T) {
	e := testEngine()

	items := []*domain.Item{
		{Score: 1.0, PublishedAt: testNow, SourceDomain: "reuters.com"},
		{Score: -1.0, PublishedAt: testNow.Add(-300 * time.Hour), SourceDomain: "nobody.io",
			Metadata: domain.Metadata{"source": "reddit", "ups": "garbage"}},
		{Score: 0.3, PublishedAt: testNow.Add(time.Hour), SourceDomain: "",
			Metadata: domain.Metadata{"source": "reddit", "ups": -100, "num_comments": 3.7}},
	}

	for _, it := range items {
		e.Apply(it)

		assert.GreaterOrEqual(t, it.CombinedWeight, 0.0)
		assert.LessOrEqual(t, it.CombinedWeight, 1.0)
		assert.GreaterOrEqual(t, it.WeightedScore, -1.0)
		assert.LessOrEqual(t, it.WeightedScore, 1.0)
		assert.InDelta(t, it.CombinedWeight*it.Score, it.WeightedScore, 1e-9)
	}
}

func TestSourceTableWithOverrides(t *testing.T) {
	table := SourceTableWithOverrides(map[string]float64{
		"reuters.com": 0.5,
		"newsite.io":  0.9,
	})

	assert.InDelta(t, 0.5, table["reuters.com"], 1e-9)
	assert.InDelta(t, 0.9, table["newsite.io"], 1e-9)
	assert.InDelta(t, 0.97, table["bloomberg.com"], 1e-9)
	// The shared default table must stay untouched.
	assert.InDelta(t, 1.0, DefaultSourceTable["reuters.com"], 1e-9)
}
