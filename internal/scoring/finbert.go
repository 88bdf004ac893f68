package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/marketpulse/sentiment/internal/core/errors"
)

const (
	finbertTimeout    = 30 * time.Second
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
	errFmtFinBERTPost = "finbert request: %w"
)

type finbertRequest struct {
	Texts []string `json:"texts"`
}

type finbertEntry struct {
	PPos float64 `json:"p_pos"`
	PNeu float64 `json:"p_neu"`
	PNeg float64 `json:"p_neg"`
}

type finbertResponse struct {
	Results []finbertEntry `json:"results"`
}

// FinBERTScorer calls a FinBERT inference HTTP service. The service receives
// the batch of texts and returns one probability triplet per text, in order.
type FinBERTScorer struct {
	baseURL    string
	httpClient *http.Client
}

func NewFinBERT(baseURL string) *FinBERTScorer {
	return &FinBERTScorer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: finbertTimeout},
	}
}

func (s *FinBERTScorer) ScoreBatch(ctx context.Context, texts []Text) ([]Result, error) {
	if len(texts) == 0 {
		return []Result{}, nil
	}

	payload := finbertRequest{Texts: make([]string, len(texts))}
	for i, t := range texts {
		payload.Texts[i] = t.Title + ". " + t.Body
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode finbert request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf(errFmtFinBERTPost, err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errFmtFinBERTPost, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finbert status %d: %w", resp.StatusCode, apperrors.ErrUnexpectedShape)
	}

	var decoded finbertResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode finbert response: %w", err)
	}

	if len(decoded.Results) != len(texts) {
		return nil, fmt.Errorf("finbert returned %d results for %d texts: %w",
			len(decoded.Results), len(texts), apperrors.ErrUnexpectedShape)
	}

	results := make([]Result, len(texts))
	for i, entry := range decoded.Results {
		results[i] = FromProbs(entry.PPos, entry.PNeu, entry.PNeg)
	}

	return results, nil
}
