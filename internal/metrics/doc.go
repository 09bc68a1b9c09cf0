// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Snapshot Metrics:
  - reelmatch_snapshot_build_duration_seconds (histogram)
  - reelmatch_snapshot_build_errors_total (counter)
  - reelmatch_snapshot_version, reelmatch_snapshot_last_success_timestamp (gauges)
  - reelmatch_snapshot_size (gauge) Labels: dimension

Recommendation Metrics:
  - reelmatch_recommendation_duration_seconds (histogram) Labels: mode
  - reelmatch_recommendation_requests_total (counter) Labels: mode, outcome
  - reelmatch_recommendation_results (histogram) Labels: mode
  - reelmatch_resolver_outcomes_total (counter) Labels: side, outcome

Metadata API Metrics:
  - reelmatch_tmdb_requests_total (counter) Labels: endpoint, status
  - reelmatch_tmdb_request_duration_seconds (histogram) Labels: endpoint
  - reelmatch_tmdb_rate_limit_hits_total (counter)
  - reelmatch_enrich_movies_total (counter) Labels: outcome

Circuit Breaker Metrics:
  - circuit_breaker_state (gauge) Labels: name (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total (counter) Labels: name, result
  - circuit_breaker_consecutive_failures (gauge) Labels: name
  - circuit_breaker_state_transitions_total (counter) Labels: name, from_state, to_state

API and Cache Metrics:
  - reelmatch_api_requests_total, reelmatch_api_request_duration_seconds
  - reelmatch_api_active_requests
  - reelmatch_cache_hits_total, reelmatch_cache_misses_total, reelmatch_cache_entries

# Usage

	start := time.Now()
	recs, err := snap.Content(ctx, query, n, filter)
	metrics.RecordRecommendation("content", time.Since(start), len(recs), err)

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
