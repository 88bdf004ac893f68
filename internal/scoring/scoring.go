// Package scoring maps item text to sentiment labels and signed scores.
//
// The pipeline consumes the Scorer interface and tolerates any implementation
// being unavailable: scoring failures degrade to a neutral result per item,
// never to a failed request.
package scoring

import (
	"context"

	"github.com/marketpulse/sentiment/internal/core/domain"
)

// flatProb is the per-class probability of the neutral fallback distribution.
const flatProb = 1.0 / 3.0

// Text is one (title, body) pair to score.
type Text struct {
	Title string
	Body  string
}

// Result is the sentiment of one text.
type Result struct {
	Label        string
	ProbPositive float64
	ProbNeutral  float64
	ProbNegative float64
	Score        float64
}

// Scorer scores a batch of texts. Implementations must return results in input
// order; batching internals are their own concern.
type Scorer interface {
	ScoreBatch(ctx context.Context, texts []Text) ([]Result, error)
}

// FromProbs builds a Result from a probability-like triplet. Probabilities are
// clamped to [0, 1], the score is the clamped positive-negative difference,
// and the label is the argmax with ties broken toward neutral.
func FromProbs(pPos, pNeu, pNeg float64) Result {
	pPos = domain.Clamp01(pPos)
	pNeu = domain.Clamp01(pNeu)
	pNeg = domain.Clamp01(pNeg)

	label := domain.LabelNeutral

	switch {
	case pPos > pNeu && pPos > pNeg:
		label = domain.LabelPositive
	case pNeg > pPos && pNeg > pNeu:
		label = domain.LabelNegative
	}

	return Result{
		Label:        label,
		ProbPositive: pPos,
		ProbNeutral:  pNeu,
		ProbNegative: pNeg,
		Score:        domain.ClampScore(pPos - pNeg),
	}
}

// NeutralResult is the fallback used when no scorer output is available.
func NeutralResult() Result {
	return Result{
		Label:        domain.LabelNeutral,
		ProbPositive: flatProb,
		ProbNeutral:  flatProb,
		ProbNegative: flatProb,
		Score:        0,
	}
}

// Neutral is the no-op scorer used when scoring is disabled.
type Neutral struct{}

func (Neutral) ScoreBatch(_ context.Context, texts []Text) ([]Result, error) {
	results := make([]Result, len(texts))
	for i := range results {
		results[i] = NeutralResult()
	}

	return results, nil
}
