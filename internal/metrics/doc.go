// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total (method, endpoint, status)
  - api_request_duration_seconds (method, endpoint)
  - api_active_requests

Recommendation Metrics:
  - recommendation_requests_total (path: personalized | fallback)
  - recommendation_duration_seconds (path)
  - recommendation_candidates
  - recommendation_excluded_total
  - preference_cache_hits_total / preference_cache_misses_total

Explanation Metrics:
  - guardrail_dropped_references_total (operation)
  - narrator_requests_total (operation, outcome)

Offer and Storage Metrics:
  - offer_lookups_total (source: cache | api | error)
  - duckdb_query_duration_seconds (operation, table)
  - circuit_breaker_state (name)

Record* helpers wrap the collectors so callers never build label values by hand.
*/
package metrics
