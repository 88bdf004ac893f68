// Package enrich backfills article body text for items that arrived with an
// empty body, using readability extraction on the source page.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"

	"github.com/marketpulse/sentiment/internal/core/domain"
)

const (
	fetchTimeout = 15 * time.Second
	logKeyURL    = "url"
)

// BodyFetcher extracts readable article text from a URL.
type BodyFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxChars   int
	logger     *zerolog.Logger
}

func NewBodyFetcher(userAgent string, maxChars int, logger *zerolog.Logger) *BodyFetcher {
	return &BodyFetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		userAgent:  userAgent,
		maxChars:   maxChars,
		logger:     logger,
	}
}

// Enrich fills the item's body text from its URL when empty. Extraction
// failures leave the item unchanged; enrichment is best-effort.
func (f *BodyFetcher) Enrich(ctx context.Context, it *domain.Item) {
	if it.Text != "" || it.URL == "" {
		return
	}

	text, err := f.extract(ctx, it.URL)
	if err != nil {
		f.logger.Debug().Err(err).Str(logKeyURL, it.URL).Msg("body extraction failed")

		return
	}

	it.Text = text
}

func (f *BodyFetcher) extract(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}

	text := domain.NormText(article.TextContent)
	if f.maxChars > 0 && len(text) > f.maxChars {
		text = text[:f.maxChars]
	}

	return text, nil
}
