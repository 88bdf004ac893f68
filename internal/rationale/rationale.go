// Package rationale attaches one human-readable explanation per item, with a
// deterministic template fallback when the generative explainer is disabled,
// failing, or degenerate.
package rationale

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/marketpulse/sentiment/internal/core/domain"
	"github.com/marketpulse/sentiment/internal/observability"
)

// Explainer produces one rationale string per item, in input order. An error
// or a malformed result discards the whole generative batch.
type Explainer interface {
	Explain(ctx context.Context, items []domain.Item, ticker string) ([]string, error)
}

// Reconciler guarantees exactly one non-null rationale per item regardless of
// explainer behavior.
type Reconciler struct {
	explainer Explainer
	logger    *zerolog.Logger
}

// NewReconciler builds a reconciler. A nil explainer means the generative path
// is disabled and every item gets its template fallback.
func NewReconciler(explainer Explainer, logger *zerolog.Logger) *Reconciler {
	return &Reconciler{explainer: explainer, logger: logger}
}

// Rationales returns exactly len(items) strings, in input order. The
// generative result, when present, is coerced to the right length: excess
// entries are dropped, missing and empty entries are backfilled with the
// per-index template fallback.
func (r *Reconciler) Rationales(ctx context.Context, items []domain.Item, ticker string) []string {
	if len(items) == 0 {
		return []string{}
	}

	if r.explainer == nil {
		return Fallbacks(items, ticker)
	}

	generated, err := r.explainer.Explain(ctx, items, ticker)
	if err != nil {
		observability.ExplainerFallbacks.Inc()
		r.logger.Warn().Err(err).Msg("explainer failed, using template rationales")

		return Fallbacks(items, ticker)
	}

	return reconcile(items, ticker, generated)
}

func reconcile(items []domain.Item, ticker string, generated []string) []string {
	out := make([]string, len(items))

	for i := range items {
		if i < len(generated) && strings.TrimSpace(generated[i]) != "" {
			out[i] = strings.TrimSpace(generated[i])
			continue
		}

		out[i] = Fallback(&items[i], ticker)
	}

	return out
}
