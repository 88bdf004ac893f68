package rationale

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketpulse/sentiment/internal/core/domain"
	apperrors "github.com/marketpulse/sentiment/internal/core/errors"
	"github.com/marketpulse/sentiment/internal/core/llm"
)

const (
	explainerSystemPrompt = "You are a financial analyst. For each news item, write a 2-3 sentence " +
		"rationale explaining why it is positive/neutral/negative for the given ticker. " +
		"Be specific and use plain language. Do not include disclaimers. " +
		`Respond with a JSON object {"rationales": ["...", ...]}, one string per item, same order.`

	explainerTemperature = 0.2
)

type compactItem struct {
	Title         string  `json:"title"`
	Source        string  `json:"source"`
	PublishedAt   string  `json:"published_at"`
	Label         string  `json:"label"`
	Score         float64 `json:"score"`
	WeightedScore float64 `json:"weighted_score"`
	URL           string  `json:"url"`
}

type explainerPayload struct {
	Rationales []string `json:"rationales"`
}

// OpenAIExplainer generates rationales with one chat completion per batch.
type OpenAIExplainer struct {
	client *llm.Client
	logger *zerolog.Logger
}

func NewOpenAIExplainer(client *llm.Client, logger *zerolog.Logger) *OpenAIExplainer {
	return &OpenAIExplainer{client: client, logger: logger}
}

func (e *OpenAIExplainer) Explain(ctx context.Context, items []domain.Item, ticker string) ([]string, error) {
	compact := make([]compactItem, len(items))
	for i, it := range items {
		compact[i] = compactItem{
			Title:         it.Title,
			Source:        it.SourceDomain,
			PublishedAt:   it.PublishedAt.UTC().Format(time.RFC3339),
			Label:         it.Label,
			Score:         domain.Round4(it.Score),
			WeightedScore: domain.Round4(it.WeightedScore),
			URL:           it.URL,
		}
	}

	encoded, err := json.Marshal(compact)
	if err != nil {
		return nil, fmt.Errorf("encode explainer items: %w", err)
	}

	userPrompt := fmt.Sprintf("Ticker: %s\n\nItems (JSON):\n%s", ticker, encoded)

	content, err := e.client.CompleteJSON(ctx, explainerSystemPrompt, userPrompt, explainerTemperature)
	if err != nil {
		return nil, fmt.Errorf("explain batch: %w", err)
	}

	var payload explainerPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("decode explainer response: %w", err)
	}

	if payload.Rationales == nil {
		return nil, fmt.Errorf("explainer payload missing rationales: %w", apperrors.ErrUnexpectedShape)
	}

	e.logger.Debug().Int("rationales", len(payload.Rationales)).Int("items", len(items)).
		Msg("explainer response decoded")

	return payload.Rationales, nil
}
