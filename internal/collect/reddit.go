package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/marketpulse/sentiment/internal/core/domain"
	apperrors "github.com/marketpulse/sentiment/internal/core/errors"
)

const (
	redditName         = "reddit"
	redditBaseURL      = "https://www.reddit.com/search.json"
	redditLinkBase     = "https://www.reddit.com"
	redditSourceDomain = "reddit.com"
	redditSearchLimit  = "50"
)

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	CreatedUTC  float64 `json:"created_utc"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
}

// RedditCollector fetches recent posts from the unauthenticated Reddit search
// API. Engagement counters land in item metadata for the weight engine.
type RedditCollector struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewReddit(timeout time.Duration, userAgent string) *RedditCollector {
	return &RedditCollector{
		baseURL:    redditBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

func (c *RedditCollector) Name() string { return redditName }

func (c *RedditCollector) Fetch(ctx context.Context, ticker string, _ int) ([]domain.Item, error) {
	q := url.Values{}
	q.Set("q", ticker+" stock")
	q.Set("sort", "new")
	q.Set("limit", redditSearchLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("reddit request: %w", err)
	}

	req.Header.Set(headerUserAgent, c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit status %d: %w", resp.StatusCode, apperrors.ErrUnexpectedShape)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	items := make([]domain.Item, 0, len(listing.Data.Children))

	for _, child := range listing.Data.Children {
		post := child.Data

		title := domain.NormText(post.Title)
		link := post.URL

		if post.Permalink != "" {
			link = redditLinkBase + post.Permalink
		}

		if title == "" || link == "" {
			continue
		}

		publishedAt := time.Now().UTC()
		if post.CreatedUTC > 0 {
			publishedAt = time.Unix(int64(post.CreatedUTC), 0).UTC()
		}

		text := domain.NormText(post.Selftext)
		if text == "" {
			text = title
		}

		items = append(items, domain.Item{
			ID:           domain.MakeID(link, title, publishedAt),
			SourceDomain: redditSourceDomain,
			Title:        title,
			URL:          link,
			PublishedAt:  publishedAt,
			Text:         text,
			Metadata: domain.Metadata{
				domain.MetaKeySource:   domain.MetaSourceReddit,
				domain.MetaKeyUpvotes:  post.Ups,
				domain.MetaKeyComments: post.NumComments,
				"subreddit":            post.Subreddit,
			},
		})
	}

	return items, nil
}
