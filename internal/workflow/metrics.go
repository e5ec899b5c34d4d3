package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerocr",
		Name:      "pages_processed_total",
		Help:      "Ledger pages processed, by final status.",
	}, []string{"status"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ledgerocr",
		Name:      "stage_duration_seconds",
		Help:      "Wall time of each pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"stage"})

	entriesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledgerocr",
		Name:      "entries_extracted_total",
		Help:      "Sales entries extracted across all pages.",
	})

	pageConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ledgerocr",
		Name:      "page_confidence",
		Help:      "Fused confidence score per completed page.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})
)
