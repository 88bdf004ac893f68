// Package observability exposes prometheus metrics for the pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_items_collected_total",
		Help: "The total number of items returned by each collector",
	}, []string{"collector"})

	CollectorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_collector_failures_total",
		Help: "The total number of collector fetch failures",
	}, []string{"collector"})

	ScorerFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentiment_scorer_fallbacks_total",
		Help: "The total number of batches scored with the neutral fallback",
	})

	ExplainerFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentiment_explainer_fallbacks_total",
		Help: "The total number of batches that fell back to template rationales",
	})

	AnalyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentiment_analyze_duration_seconds",
		Help:    "End-to-end duration of sentiment analysis requests",
		Buckets: prometheus.DefBuckets,
	})

	AnalyzedItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentiment_analyzed_items",
		Help:    "Number of items in each analyzed result set",
		Buckets: []float64{0, 1, 5, 10, 20, 40, 80},
	})
)
