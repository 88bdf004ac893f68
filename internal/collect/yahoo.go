package collect

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/marketpulse/sentiment/internal/core/domain"
)

const (
	yahooName         = "yahoo"
	yahooBaseURL      = "https://feeds.finance.yahoo.com/rss/2.0/headline"
	yahooSourceDomain = "finance.yahoo.com"
)

// YahooFinanceCollector fetches the Yahoo Finance headline RSS feed for a ticker.
type YahooFinanceCollector struct {
	baseURL    string
	httpClient *http.Client
	feedParser *gofeed.Parser
	userAgent  string
}

func NewYahooFinance(timeout time.Duration, userAgent string) *YahooFinanceCollector {
	return &YahooFinanceCollector{
		baseURL:    yahooBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		feedParser: gofeed.NewParser(),
		userAgent:  userAgent,
	}
}

func (c *YahooFinanceCollector) Name() string { return yahooName }

func (c *YahooFinanceCollector) Fetch(ctx context.Context, ticker string, _ int) ([]domain.Item, error) {
	q := url.Values{}
	q.Set("s", ticker)
	q.Set("region", "US")
	q.Set("lang", "en-US")

	feed, err := fetchFeed(ctx, c.httpClient, c.feedParser, c.baseURL+"?"+q.Encode(), c.userAgent)
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

		sourceDomain := domain.DomainFromURL(link)
		if sourceDomain == "" {
			sourceDomain = yahooSourceDomain
		}

		items = append(items, domain.Item{
			ID:           domain.MakeID(link, title, publishedAt),
			SourceDomain: sourceDomain,
			Title:        title,
			URL:          link,
			PublishedAt:  publishedAt,
			Text:         domain.NormText(entry.Description),
			Metadata:     domain.Metadata{domain.MetaKeySource: domain.MetaSourceYahoo},
		})
	}

	return items, nil
}
