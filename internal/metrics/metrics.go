// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total recommendation requests by serving path",
		},
		[]string{"path"}, // "personalized", "fallback"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time to produce a recommendation list",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"path"},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates",
			Help:    "Number of candidates scored per personalized request",
			Buckets: []float64{0, 10, 25, 50, 100, 150, 200},
		},
	)

	RecommendationExcluded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_excluded_total",
			Help: "Books removed from candidate pools (read or negative categories)",
		},
	)

	RecommendationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_errors_total",
			Help: "Recommendation operations that failed",
		},
		[]string{"operation"},
	)

	PreferenceCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "preference_cache_hits_total",
			Help: "Preference view cache hits",
		},
	)

	PreferenceCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "preference_cache_misses_total",
			Help: "Preference view cache misses",
		},
	)

	PreferenceCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "preference_cache_expired_total",
			Help: "Expired preference entries removed by the janitor",
		},
	)

	// Explanation Metrics
	GuardrailDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardrail_dropped_references_total",
			Help: "Book references removed from generated text because they were not allow-listed",
		},
		[]string{"operation"}, // "explain", "compare"
	)

	NarratorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narrator_requests_total",
			Help: "Narrative generation attempts by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "generated", "fallback"
	)

	NarratorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "narrator_request_duration_seconds",
			Help:    "Latency of narrative generation calls",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// Offer Metrics
	OfferLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_lookups_total",
			Help: "Offer availability lookups by source",
		},
		[]string{"source"}, // "cache", "api", "error"
	)

	OfferAPIDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "offer_api_request_duration_seconds",
			Help:    "Latency of offer API calls",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
		},
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

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
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

// RecordRecommendation records a completed recommendation request.
func RecordRecommendation(fallback bool, duration time.Duration, candidates, excluded int) {
	path := "personalized"
	if fallback {
		path = "fallback"
	}
	RecommendationRequests.WithLabelValues(path).Inc()
	RecommendationDuration.WithLabelValues(path).Observe(duration.Seconds())
	if !fallback {
		RecommendationCandidates.Observe(float64(candidates))
	}
	RecommendationExcluded.Add(float64(excluded))
}

// RecordRecommendationError records a failed engine operation.
func RecordRecommendationError(operation string) {
	RecommendationErrors.WithLabelValues(operation).Inc()
}

// RecordPreferenceCache records a preference cache lookup.
func RecordPreferenceCache(hit bool) {
	if hit {
		PreferenceCacheHits.Inc()
	} else {
		PreferenceCacheMisses.Inc()
	}
}

// RecordGuardrailDrops records references stripped from generated text.
func RecordGuardrailDrops(operation string, n int) {
	if n > 0 {
		GuardrailDropped.WithLabelValues(operation).Add(float64(n))
	}
}

// RecordNarration records a narrative generation attempt.
func RecordNarration(operation string, generated bool, duration time.Duration) {
	outcome := "fallback"
	if generated {
		outcome = "generated"
	}
	NarratorRequests.WithLabelValues(operation, outcome).Inc()
	NarratorDuration.Observe(duration.Seconds())
}

// RecordOfferLookup records where offer data was served from.
func RecordOfferLookup(source string, n int) {
	if n > 0 {
		OfferLookups.WithLabelValues(source).Add(float64(n))
	}
}
