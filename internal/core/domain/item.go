// Package domain holds the canonical types flowing through the sentiment pipeline.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"
	"time"
)

// Sentiment labels assigned by the scorer.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// idHexLen is the length of the hex-encoded item ID.
const idHexLen = 16

// Item is one observation about a ticker from one source. It is created by a
// collector with content fields only and enriched in place by the scoring,
// weighting, and rationale stages. Each stage writes only its own fields.
type Item struct {
	ID           string    `json:"id"`
	SourceDomain string    `json:"source"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	PublishedAt  time.Time `json:"published_at"`
	Text         string    `json:"text"`

	// Sentiment fields, set by the scorer stage.
	Label        string  `json:"label"`
	ProbPositive float64 `json:"prob_positive"`
	ProbNeutral  float64 `json:"prob_neutral"`
	ProbNegative float64 `json:"prob_negative"`
	Score        float64 `json:"score"`

	// Weighting fields, set by the weight engine.
	RecencyWeight    float64 `json:"-"`
	SourceWeight     float64 `json:"-"`
	EngagementWeight float64 `json:"-"`
	CombinedWeight   float64 `json:"weight"`
	WeightedScore    float64 `json:"weighted_score"`

	// Rationale is always a string in the final record, empty when none.
	Rationale string `json:"rationale"`

	// Metadata carries source-specific fields (engagement counters etc.).
	// Owned by the item; downstream stages only read it.
	Metadata Metadata `json:"-"`
}

// MakeID derives a deterministic item ID from the URL, title, and publication
// time, so repeated collection runs on unchanged input yield the same ID.
func MakeID(url, title string, publishedAt time.Time) string {
	key := url + "|" + title + "|" + publishedAt.UTC().Format(time.RFC3339)
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])[:idHexLen]
}

// NormalizeDomain lowercases a source domain and strips the www. prefix.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))

	return strings.TrimPrefix(domain, "www.")
}

// DomainFromURL extracts the normalized host from a raw URL. It returns an
// empty string when no host can be found.
func DomainFromURL(rawURL string) string {
	rest := rawURL

	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}

	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		rest = rest[:idx]
	}

	if idx := strings.IndexByte(rest, '@'); idx >= 0 {
		rest = rest[idx+1:]
	}

	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		rest = rest[:idx]
	}

	return NormalizeDomain(rest)
}

// Clamp01 clamps x to [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}

	if x > 1 {
		return 1
	}

	return x
}

// ClampScore clamps x to [-1, 1].
func ClampScore(x float64) float64 {
	if x < -1 {
		return -1
	}

	if x > 1 {
		return 1
	}

	return x
}

// round4Factor is the scale used by Round4.
const round4Factor = 10000.0

// Round4 rounds x to 4 decimal places, the precision of all reported scores.
func Round4(x float64) float64 {
	return math.Round(x*round4Factor) / round4Factor
}

// NormText collapses runs of whitespace into single spaces and trims the ends.
func NormText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
