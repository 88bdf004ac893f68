package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketpulse/sentiment/internal/core/domain"
	"github.com/marketpulse/sentiment/internal/pipeline"
)

type fakeAnalyzer struct {
	lastTicker            string
	lastLookback          int
	lastLimit             int
	lastIncludeRationales bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, ticker string, lookbackDays int, includeRationales bool, limit int) pipeline.Result {
	f.lastTicker = ticker
	f.lastLookback = lookbackDays
	f.lastLimit = limit
	f.lastIncludeRationales = includeRationales

	return pipeline.Result{
		Ticker:       ticker,
		AsOf:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		LookbackDays: lookbackDays,
		OverallScore: 0.2,
		NItems:       1,
		Items: []domain.Item{{
			ID: "abc", Title: "One", SourceDomain: "reuters.com",
			Label: domain.LabelPositive, Score: 0.5, CombinedWeight: 0.8,
			WeightedScore: 0.4, Rationale: "r",
		}},
	}
}

func testServer(analyzer Analyzer) *Server {
	logger := zerolog.Nop()

	return New(analyzer, Limits{LookbackDefault: 5, LookbackMax: 14, MaxItems: 40}, 0, &logger)
}

func doRequest(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	s.handleSentiment(rec, req)

	return rec
}

func TestHandleSentiment(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	rec := doRequest(t, testServer(analyzer), "/sentiment?ticker=tsla")

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	assert.Equal(t, "TSLA", payload["ticker"])
	assert.InDelta(t, 0.2, payload["overall_score"].(float64), 1e-9)
	assert.InDelta(t, 1, payload["n_items"].(float64), 1e-9)

	items := payload["items"].([]any)
	require.Len(t, items, 1)

	first := items[0].(map[string]any)

	assert.Equal(t, "abc", first["id"])
	assert.Equal(t, "reuters.com", first["source"])
	assert.Equal(t, "positive", first["label"])
	assert.InDelta(t, 0.8, first["weight"].(float64), 1e-9)
	assert.InDelta(t, 0.4, first["weighted_score"].(float64), 1e-9)
	assert.Equal(t, "r", first["rationale"])

	assert.Equal(t, "TSLA", analyzer.lastTicker)
	assert.Equal(t, 5, analyzer.lastLookback)
	assert.Equal(t, 40, analyzer.lastLimit)
	assert.True(t, analyzer.lastIncludeRationales)
}

func TestHandleSentimentInvalidTicker(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
	}{
		{name: "empty", ticker: ""},
		{name: "too long", ticker: "ABCDEFGHIJK"},
		{name: "bad characters", ticker: "TS%20LA"},
		{name: "spaces only", ticker: "+++"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, testServer(&fakeAnalyzer{}), "/sentiment?ticker="+tt.ticker)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleSentimentClampsParams(t *testing.T) {
	analyzer := &fakeAnalyzer{}

	doRequest(t, testServer(analyzer), "/sentiment?ticker=AAPL&lookback_days=99&limit=0&include_rationales=false")

	assert.Equal(t, 14, analyzer.lastLookback)
	assert.Equal(t, 1, analyzer.lastLimit)
	assert.False(t, analyzer.lastIncludeRationales)
}

func TestHandleSentimentMalformedParamsUseDefaults(t *testing.T) {
	analyzer := &fakeAnalyzer{}

	doRequest(t, testServer(analyzer), "/sentiment?ticker=AAPL&lookback_days=abc&limit=xyz&include_rationales=maybe")

	assert.Equal(t, 5, analyzer.lastLookback)
	assert.Equal(t, 40, analyzer.lastLimit)
	assert.True(t, analyzer.lastIncludeRationales)
}

func TestParseTicker(t *testing.T) {
	got, err := parseTicker(" brk.b ")
	require.NoError(t, err)
	assert.Equal(t, "BRK.B", got)

	_, err = parseTicker("not a ticker")
	assert.Error(t, err)
}
