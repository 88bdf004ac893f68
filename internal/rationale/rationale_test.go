package rationale

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketpulse/sentiment/internal/core/domain"
)

type fakeExplainer struct {
	rationales []string
	err        error
}

func (f *fakeExplainer) Explain(_ context.Context, _ []domain.Item, _ string) ([]string, error) {
	return f.rationales, f.err
}

func testItems() []domain.Item {
	return []domain.Item{
		{Title: "Earnings beat expectations", SourceDomain: "reuters.com", Label: domain.LabelPositive},
		{Title: "Regulator opens probe", SourceDomain: "wsj.com", Label: domain.LabelNegative},
		{Title: "Shares unchanged in quiet session", SourceDomain: "cnbc.com", Label: domain.LabelNeutral},
	}
}

func newReconciler(e Explainer) *Reconciler {
	logger := zerolog.Nop()

	return NewReconciler(e, &logger)
}

func TestRationalesDisabledExplainer(t *testing.T) {
	items := testItems()

	got := newReconciler(nil).Rationales(context.Background(), items, "TSLA")

	require.Len(t, got, len(items))
	assert.Contains(t, got[0], "Positive for TSLA")
	assert.Contains(t, got[1], "Negative for TSLA")
	assert.Contains(t, got[2], "Mixed/neutral for TSLA")

	for i, r := range got {
		assert.NotEmpty(t, r)
		assert.Contains(t, r, items[i].SourceDomain)
	}
}

func TestRationalesExplainerError(t *testing.T) {
	items := testItems()

	got := newReconciler(&fakeExplainer{err: errors.New("boom")}).Rationales(context.Background(), items, "AAPL")

	require.Len(t, got, len(items))

	for _, r := range got {
		assert.Contains(t, r, "AAPL")
	}
}

func TestRationalesTooShortListBackfilled(t *testing.T) {
	items := testItems()

	got := newReconciler(&fakeExplainer{rationales: []string{"generated one"}}).
		Rationales(context.Background(), items, "TSLA")

	require.Len(t, got, 3)
	assert.Equal(t, "generated one", got[0])
	assert.Contains(t, got[1], "Negative for TSLA")
	assert.Contains(t, got[2], "Mixed/neutral for TSLA")
}

func TestRationalesTooLongListTruncated(t *testing.T) {
	items := testItems()

	got := newReconciler(&fakeExplainer{rationales: []string{"r0", "r1", "r2", "r3", "r4"}}).
		Rationales(context.Background(), items, "TSLA")

	require.Len(t, got, 3)
	assert.Equal(t, []string{"r0", "r1", "r2"}, got)
}

func TestRationalesEmptyEntriesFallBackPerIndex(t *testing.T) {
	items := testItems()

	got := newReconciler(&fakeExplainer{rationales: []string{"ok", "   ", ""}}).
		Rationales(context.Background(), items, "TSLA")

	require.Len(t, got, 3)
	assert.Equal(t, "ok", got[0])
	assert.Contains(t, got[1], "Negative for TSLA")
	assert.Contains(t, got[2], "Mixed/neutral for TSLA")
}

func TestRationalesEmptyItems(t *testing.T) {
	got := newReconciler(nil).Rationales(context.Background(), nil, "TSLA")

	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFallbackUnknownLabel(t *testing.T) {
	it := domain.Item{Title: "Something happened", SourceDomain: "x.com", Label: ""}

	assert.Contains(t, Fallback(&it, "MSFT"), "Mixed/neutral for MSFT")
}

func TestShorten(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		expected string
	}{
		{name: "short enough", input: "hello", maxRunes: 10, expected: "hello"},
		{name: "exact length", input: "hello", maxRunes: 5, expected: "hello"},
		{name: "truncated", input: "hello world", maxRunes: 8, expected: "hello w…"},
		{name: "multibyte runes", input: "привет мир", maxRunes: 7, expected: "привет…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shorten(tt.input, tt.maxRunes)

			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len([]rune(got)), tt.maxRunes)
		})
	}
}

func TestFallbackCapsLongTitles(t *testing.T) {
	it := domain.Item{
		Title:        strings.Repeat("a", 500),
		SourceDomain: "reuters.com",
		Label:        domain.LabelPositive,
	}

	r := Fallback(&it, "TSLA")

	assert.Contains(t, r, "…")
	assert.NotContains(t, r, strings.Repeat("a", 141))
}
