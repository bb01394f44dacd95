// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_submissions_total",
			Help: "Total number of submissions scored",
		},
		[]string{"test_type"},
	)

	DuplicateSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_duplicates_total",
			Help: "Total number of submissions short-circuited by the dedup window",
		},
		[]string{"test_type"},
	)

	ScoringFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_failures_total",
			Help: "Total number of scoring operations that failed to persist",
		},
		[]string{"test_type", "error_code"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "scoring_duration_seconds",
			Help: "Duration of score-and-store operations in seconds",
		},
		[]string{"test_type"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoring_cache_hits_total",
			Help: "Total number of result reads served from the cache",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoring_cache_misses_total",
			Help: "Total number of result reads recomputed from the store",
		},
	)
)
