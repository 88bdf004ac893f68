package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/marketpulse/sentiment/internal/core/domain"
	apperrors "github.com/marketpulse/sentiment/internal/core/errors"
)

const (
	googleNewsName    = "googlenews"
	googleNewsBaseURL = "https://news.google.com/rss/search"

	headerUserAgent = "User-Agent"
	errFmtFetchFeed = "fetch feed: %w"
	errFmtParseFeed = "parse feed: %w"
)

// GoogleNewsCollector fetches headlines from the Google News RSS search feed,
// letting Google aggregate across mainstream outlets.
type GoogleNewsCollector struct {
	baseURL    string
	httpClient *http.Client
	feedParser *gofeed.Parser
	userAgent  string
}

func NewGoogleNews(timeout time.Duration, userAgent string) *GoogleNewsCollector {
	return &GoogleNewsCollector{
		baseURL:    googleNewsBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		feedParser: gofeed.NewParser(),
		userAgent:  userAgent,
	}
}

func (c *GoogleNewsCollector) Name() string { return googleNewsName }

func (c *GoogleNewsCollector) Fetch(ctx context.Context, ticker string, lookbackDays int) ([]domain.Item, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s stock when:%dd", ticker, lookbackDays))
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")

	feed, err := c.fetchFeed(ctx, c.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(feed.Items))

	for _, entry := range feed.Items {
		title := domain.NormText(entry.Title)
		link := domain.NormText(entry.Link)

		if title == "" || link == "" {
			continue
		}

		publishedAt := feedEntryTime(entry, time.Now().UTC())

		items = append(items, domain.Item{
			ID:           domain.MakeID(link, title, publishedAt),
			SourceDomain: domain.DomainFromURL(link),
			Title:        title,
			URL:          link,
			PublishedAt:  publishedAt,
			Text:         domain.NormText(entry.Description),
			Metadata:     domain.Metadata{domain.MetaKeySource: domain.MetaSourceGoogleNews},
		})
	}

	return items, nil
}

func (c *GoogleNewsCollector) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	return fetchFeed(ctx, c.httpClient, c.feedParser, feedURL, c.userAgent)
}

func fetchFeed(ctx context.Context, client *http.Client, parser *gofeed.Parser, feedURL, userAgent string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf(errFmtFetchFeed, err)
	}

	req.Header.Set(headerUserAgent, userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errFmtFetchFeed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed status %d: %w", resp.StatusCode, apperrors.ErrUnexpectedShape)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(errFmtFetchFeed, err)
	}

	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf(errFmtParseFeed, err)
	}

	return feed, nil
}

// feedEntryTime resolves an entry's publication time to UTC, parsing the raw
// date leniently and defaulting to the ingestion time when unknown.
func feedEntryTime(entry *gofeed.Item, fallback time.Time) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}

	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}

	raw := entry.Published
	if raw == "" {
		raw = entry.Updated
	}

	if raw != "" {
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t.UTC()
		}
	}

	return fallback
}
