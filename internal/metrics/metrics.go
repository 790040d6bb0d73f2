// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - API endpoint latency and throughput
// - Metadata store efficiency (BadgerDB)
// - Film resolution outcomes per source
// - Upstream fetch latency and errors
// - Analysis pipeline duration

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Metadata Store Metrics (BadgerDB)
	StoreHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_hits_total",
			Help: "Total number of metadata store cache hits",
		},
	)

	StoreMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_misses_total",
			Help: "Total number of metadata store cache misses",
		},
	)

	StoreUpserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_upserts_total",
			Help: "Total number of film records written to the store",
		},
	)

	StoreRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_records",
			Help: "Current number of film records in the store",
		},
		[]string{"state"}, // "resolved", "unresolved"
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of metadata store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "get", "upsert", "stats"
	)

	// Film Resolution Metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolutions_total",
			Help: "Total number of film resolutions by outcome",
		},
		[]string{"outcome"}, // "cached", "primary", "fallback", "unresolved", "skipped"
	)

	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolution_duration_seconds",
			Help:    "Duration of live film resolutions in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Upstream Fetch Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream HTTP requests",
		},
		[]string{"source", "result"}, // source: "letterboxd", "tmdb"; result: "success", "error", "rate_limited"
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Analysis Pipeline Metrics
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Duration of full profile analyses in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of profile analyses by outcome",
		},
		[]string{"outcome"}, // "success", "not_found", "empty_profile", "upstream_unavailable", "error"
	)

	AnalysisFilmCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_film_count",
			Help:    "Number of watched films per analyzed profile",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
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
)

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

// RecordStoreLookup records a store cache hit or miss
func RecordStoreLookup(hit bool, duration time.Duration) {
	if hit {
		StoreHits.Inc()
	} else {
		StoreMisses.Inc()
	}
	StoreOperationDuration.WithLabelValues("get").Observe(duration.Seconds())
}

// RecordStoreUpsert records a film record write
func RecordStoreUpsert(duration time.Duration) {
	StoreUpserts.Inc()
	StoreOperationDuration.WithLabelValues("upsert").Observe(duration.Seconds())
}

// UpdateStoreRecords updates the record count gauges
func UpdateStoreRecords(resolved, unresolved int64) {
	StoreRecords.WithLabelValues("resolved").Set(float64(resolved))
	StoreRecords.WithLabelValues("unresolved").Set(float64(unresolved))
}

// RecordResolution records a film resolution outcome
func RecordResolution(outcome string) {
	ResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordUpstreamRequest records an upstream HTTP request
func RecordUpstreamRequest(source, result string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(source, result).Inc()
	UpstreamRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordAnalysis records a completed profile analysis
func RecordAnalysis(outcome string, filmCount int, duration time.Duration) {
	AnalysesTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		AnalysisDuration.Observe(duration.Seconds())
		AnalysisFilmCount.Observe(float64(filmCount))
	}
}
