// Package weights computes per-item importance weights from recency, source
// credibility, and engagement, and fuses them into one combined weight.
package weights

import (
	"math"
	"time"

	"github.com/marketpulse/sentiment/internal/core/domain"
)

// Convex combination coefficients. Policy constants, not configurable per call.
const (
	recencyCoeff    = 0.5
	sourceCoeff     = 0.3
	engagementCoeff = 0.2
)

const (
	// engagementDamping divides the log-scaled engagement signal so viral
	// posts do not dominate linearly.
	engagementDamping = 10.0

	// commentHalfWeight discounts comments relative to upvotes.
	commentHalfWeight = 0.5

	// neutralEngagement is the flat weight for sources with no engagement
	// signal. "No information" is deliberately not scored as zero.
	neutralEngagement = 0.5

	minHalfLifeHours = 1e-6
)

// Config is the immutable weighting policy injected into the engine.
type Config struct {
	// HalfLifeHours controls the recency decay rate.
	HalfLifeHours float64

	// SourceTable maps source domains to credibility weights in [0, 1].
	SourceTable map[string]float64

	// DefaultSourceWeight applies to domains absent from the table.
	DefaultSourceWeight float64

	// Now is the clock used for recency; defaults to time.Now.
	Now func() time.Time
}

// Engine computes item weights. It never fails: malformed engagement metadata
// reads as zero and every result is clamped to [0, 1].
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.HalfLifeHours < minHalfLifeHours {
		cfg.HalfLifeHours = minHalfLifeHours
	}

	return &Engine{cfg: cfg}
}

// Apply computes and writes all weighting fields of the item.
func (e *Engine) Apply(it *domain.Item) {
	rw := e.Recency(it.PublishedAt)
	sw := e.Source(it.SourceDomain)
	ew := e.Engagement(it)

	it.RecencyWeight = rw
	it.SourceWeight = sw
	it.EngagementWeight = ew
	it.CombinedWeight = Combine(rw, sw, ew)
	it.WeightedScore = domain.ClampScore(it.CombinedWeight * it.Score)
}

// Recency returns the exponential half-life decay weight for a publication
// time. Age is floored at zero, so future timestamps weigh 1.0.
func (e *Engine) Recency(publishedAt time.Time) float64 {
	ageHours := e.cfg.Now().UTC().Sub(publishedAt.UTC()).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	return domain.Clamp01(math.Exp2(-ageHours / e.cfg.HalfLifeHours))
}

// Source returns the credibility weight for a source domain, falling back to
// the configured default for unknown domains.
func (e *Engine) Source(sourceDomain string) float64 {
	if w, ok := e.cfg.SourceTable[domain.NormalizeDomain(sourceDomain)]; ok {
		return domain.Clamp01(w)
	}

	return domain.Clamp01(e.cfg.DefaultSourceWeight)
}

// Engagement returns the log-damped engagement weight for social items and a
// flat neutral weight for everything else. Negative counters read as zero.
func (e *Engine) Engagement(it *domain.Item) float64 {
	if !it.Metadata.IsSocial() {
		return neutralEngagement
	}

	ups := it.Metadata.Int(domain.MetaKeyUpvotes, 0)
	comments := it.Metadata.Int(domain.MetaKeyComments, 0)

	if ups < 0 {
		ups = 0
	}

	if comments < 0 {
		comments = 0
	}

	raw := math.Log1p(float64(ups)) + commentHalfWeight*math.Log1p(float64(comments))

	return domain.Clamp01(raw / engagementDamping)
}

// Combine fuses the three weights with the fixed convex combination.
func Combine(recency, source, engagement float64) float64 {
	return domain.Clamp01(recencyCoeff*recency + sourceCoeff*source + engagementCoeff*engagement)
}
