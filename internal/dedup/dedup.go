// Package dedup collapses near-duplicate items collected from independent sources.
package dedup

import (
	"strings"

	"github.com/marketpulse/sentiment/internal/core/domain"
)

// Dedupe returns items with duplicates removed in a single pass, keeping the
// first-seen instance. Two keys are checked independently: the URL with its
// query string stripped, and the exact title. An item is dropped when either
// key was already seen. Empty keys only collide with empty keys of the same
// kind, so items without a URL or title are not dropped for emptiness alone.
func Dedupe(items []domain.Item) []domain.Item {
	seenURLs := make(map[string]struct{}, len(items))
	seenTitles := make(map[string]struct{}, len(items))
	out := make([]domain.Item, 0, len(items))

	for _, it := range items {
		urlKey := StripQuery(it.URL)
		titleKey := it.Title

		if _, dup := seenURLs[urlKey]; dup {
			continue
		}

		if _, dup := seenTitles[titleKey]; dup {
			continue
		}

		seenURLs[urlKey] = struct{}{}
		seenTitles[titleKey] = struct{}{}
		out = append(out, it)
	}

	return out
}

// StripQuery removes the query string from a URL.
func StripQuery(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '?'); idx >= 0 {
		return rawURL[:idx]
	}

	return rawURL
}
