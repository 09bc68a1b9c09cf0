// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Prometheus instrumentation for:
// - Snapshot builds (feature store, rating matrix, neighbor index)
// - Recommendation latency per mode
// - Identity resolution outcomes
// - Metadata API calls and circuit breaker state
// - API endpoint latency and throughput
// - Result cache efficiency

var (
	// Snapshot Metrics
	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelmatch_snapshot_build_duration_seconds",
			Help:    "Duration of full engine snapshot builds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	SnapshotBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmatch_snapshot_build_errors_total",
			Help: "Total number of failed snapshot builds",
		},
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_snapshot_version",
			Help: "Version of the snapshot currently serving queries",
		},
	)

	SnapshotLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_snapshot_last_success_timestamp",
			Help: "Unix timestamp of the last successful snapshot build",
		},
	)

	SnapshotSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmatch_snapshot_size",
			Help: "Row and column counts of the serving snapshot",
		},
		[]string{"dimension"}, // "movies", "ratings", "matrix_items", "matrix_users", "catalog_titles"
	)

	// Recommendation Metrics
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_recommendation_duration_seconds",
			Help:    "Duration of recommendation queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"}, // "content", "collaborative", "hybrid"
	)

	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_recommendation_requests_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"mode", "outcome"}, // outcome: "ok", "empty", "error"
	)

	RecommendationResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_recommendation_results",
			Help:    "Number of results returned per recommendation query",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50, 100},
		},
		[]string{"mode"},
	)

	ResolverOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_resolver_outcomes_total",
			Help: "Identity resolution outcomes",
		},
		[]string{"side", "outcome"}, // side: "content", "title"; outcome: "found", "external_only", "not_found", "error"
	)

	// Metadata API Metrics
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_tmdb_requests_total",
			Help: "Total number of metadata API requests",
		},
		[]string{"endpoint", "status"},
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_tmdb_request_duration_seconds",
			Help:    "Metadata API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	TMDBRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmatch_tmdb_rate_limit_hits_total",
			Help: "Total number of HTTP 429 responses from the metadata API",
		},
	)

	EnrichMovies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_enrich_movies_total",
			Help: "Catalog movies processed by the enricher",
		},
		[]string{"outcome"}, // "enriched", "not_found", "error"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"}, // "results", "tmdb"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmatch_cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordSnapshotBuild records a snapshot build. On success the size gauges
// and version follow info.
func RecordSnapshotBuild(duration time.Duration, info recommend.SnapshotInfo, err error) {
	SnapshotBuildDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotBuildErrors.Inc()
		return
	}
	SnapshotVersion.Set(float64(info.Version))
	SnapshotLastSuccess.Set(float64(time.Now().Unix()))
	SnapshotSize.WithLabelValues("movies").Set(float64(info.Movies))
	SnapshotSize.WithLabelValues("ratings").Set(float64(info.Ratings))
	SnapshotSize.WithLabelValues("matrix_items").Set(float64(info.MatrixItems))
	SnapshotSize.WithLabelValues("matrix_users").Set(float64(info.MatrixUsers))
	SnapshotSize.WithLabelValues("catalog_titles").Set(float64(info.CatalogTitles))
}

// RecordRecommendation records one recommendation query.
func RecordRecommendation(mode string, duration time.Duration, results int, err error) {
	RecommendationDuration.WithLabelValues(mode).Observe(duration.Seconds())

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case results == 0:
		outcome = "empty"
	}
	RecommendationRequests.WithLabelValues(mode, outcome).Inc()
	if err == nil {
		RecommendationResults.WithLabelValues(mode).Observe(float64(results))
	}
}

// RecordResolve records an identity resolution outcome.
func RecordResolve(side, outcome string) {
	ResolverOutcomes.WithLabelValues(side, outcome).Inc()
}

// RecordTMDBRequest records a metadata API call.
func RecordTMDBRequest(endpoint, status string, duration time.Duration) {
	TMDBRequests.WithLabelValues(endpoint, status).Inc()
	TMDBRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordEnrichOutcome records one enrichment result.
func RecordEnrichOutcome(outcome string) {
	EnrichMovies.WithLabelValues(outcome).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// ErrorKind buckets an error into a low-cardinality label value.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, recommend.ErrConfiguration):
		return "configuration"
	case errors.Is(err, recommend.ErrUnknownItem):
		return "unknown_item"
	case errors.Is(err, recommend.ErrUntrainedModel):
		return "untrained"
	case errors.Is(err, recommend.ErrExternalService):
		return "external_service"
	case errors.Is(err, recommend.ErrInvalidWeight):
		return "invalid_weight"
	default:
		return "other"
	}
}
