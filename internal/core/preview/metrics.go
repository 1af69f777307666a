package preview

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values.
const (
	OutcomeCached  = "cached"
	OutcomeFetched = "fetched"
	OutcomeError   = "error"
)

var (
	// PreviewsTotal counts processed URLs by outcome.
	PreviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkpreview_urls_total",
		Help: "Total number of URLs processed by the preview pipeline",
	}, []string{"outcome"})

	// FetchErrorsTotal counts fetch failures by reason.
	FetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkpreview_fetch_errors_total",
		Help: "Total number of fetch failures by reason",
	}, []string{"reason"})

	// FetchDuration measures the fetch+parse latency for cache misses.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "linkpreview_fetch_duration_seconds",
		Help:    "Duration of fetch and parse for cache misses",
		Buckets: prometheus.DefBuckets,
	})

	// CacheSize tracks the number of resident cache entries.
	CacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkpreview_cache_entries",
		Help: "Number of entries resident in the preview cache",
	})
)
