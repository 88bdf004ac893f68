package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/marketpulse/sentiment/internal/core/llm"
)

const (
	scoringSystemPrompt = "You are a financial sentiment classifier. For each numbered text about a " +
		"stock, estimate the probability that its sentiment toward the stock is positive, neutral, " +
		"or negative. Probabilities must be in [0,1]. Respond with a JSON object " +
		`{"results": [{"index": 0, "p_pos": 0.0, "p_neu": 0.0, "p_neg": 0.0}, ...]} ` +
		"with exactly one entry per input text, same order. No extra text."

	maxScoringBodyChars = 400
)

type scoredEntry struct {
	Index int     `json:"index"`
	PPos  float64 `json:"p_pos"`
	PNeu  float64 `json:"p_neu"`
	PNeg  float64 `json:"p_neg"`
}

type scoringPayload struct {
	Results []scoredEntry `json:"results"`
}

// OpenAIScorer scores text batches with one chat completion per batch.
type OpenAIScorer struct {
	client *llm.Client
	logger *zerolog.Logger
}

func NewOpenAI(client *llm.Client, logger *zerolog.Logger) *OpenAIScorer {
	return &OpenAIScorer{client: client, logger: logger}
}

// ScoreBatch scores all texts in one request. Entries the model drops come
// back neutral; out-of-range indices and malformed probabilities are clamped.
func (s *OpenAIScorer) ScoreBatch(ctx context.Context, texts []Text) ([]Result, error) {
	if len(texts) == 0 {
		return []Result{}, nil
	}

	content, err := s.client.CompleteJSON(ctx, scoringSystemPrompt, buildScoringPrompt(texts), 0)
	if err != nil {
		return nil, fmt.Errorf("score batch: %w", err)
	}

	var payload scoringPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("decode scoring response: %w", err)
	}

	results := make([]Result, len(texts))
	for i := range results {
		results[i] = NeutralResult()
	}

	matched := 0

	for _, entry := range payload.Results {
		if entry.Index < 0 || entry.Index >= len(texts) {
			continue
		}

		results[entry.Index] = FromProbs(entry.PPos, entry.PNeu, entry.PNeg)
		matched++
	}

	if matched < len(texts) {
		s.logger.Warn().
			Int("expected", len(texts)).
			Int("matched", matched).
			Msg("scorer returned fewer entries than inputs, neutral backfill applied")
	}

	return results, nil
}

func buildScoringPrompt(texts []Text) string {
	var sb strings.Builder

	sb.WriteString("Texts:\n")

	for i, t := range texts {
		body := t.Body
		if len(body) > maxScoringBodyChars {
			body = body[:maxScoringBodyChars]
		}

		sb.WriteString(fmt.Sprintf("%d. %s. %s\n", i, t.Title, body))
	}

	return sb.String()
}
