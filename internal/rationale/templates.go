package rationale

import (
	"fmt"

	"github.com/marketpulse/sentiment/internal/core/domain"
)

const (
	// maxTitleRunes caps the title embedded in a template rationale.
	maxTitleRunes    = 140
	truncationMarker = "…"
	fallbackPositive = "Positive for %s: %s. Tone and content suggest supportive implications; source: %s."
	fallbackNegative = "Negative for %s: %s. Tone and details imply headwinds/risks; source: %s."
	fallbackNeutral  = "Mixed/neutral for %s: %s. Limited directional impact; source: %s."
)

// Fallback renders the deterministic template rationale for one item, keyed on
// its sentiment label.
func Fallback(it *domain.Item, ticker string) string {
	title := Shorten(it.Title, maxTitleRunes)

	switch it.Label {
	case domain.LabelPositive:
		return fmt.Sprintf(fallbackPositive, ticker, title, it.SourceDomain)
	case domain.LabelNegative:
		return fmt.Sprintf(fallbackNegative, ticker, title, it.SourceDomain)
	default:
		return fmt.Sprintf(fallbackNeutral, ticker, title, it.SourceDomain)
	}
}

// Fallbacks renders template rationales for every item.
func Fallbacks(items []domain.Item, ticker string) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = Fallback(&items[i], ticker)
	}

	return out
}

// Shorten truncates s to at most maxRunes runes, replacing the tail with a
// truncation marker.
func Shorten(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	if maxRunes <= 1 {
		return truncationMarker
	}

	return string(runes[:maxRunes-1]) + truncationMarker
}
