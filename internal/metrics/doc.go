// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

/*
Package metrics provides Prometheus metrics collection and export for observability.

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8338/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)

Metadata Store Metrics:
  - store_hits_total / store_misses_total: cache efficiency for film lookups
  - store_upserts_total: film records written
  - store_records: current record count (gauge)
    Labels: source (primary, fallback, unresolved)
  - store_operation_duration_seconds: Badger operation latency (histogram)
    Labels: operation (get, upsert, stats)

Resolution Metrics:
  - resolutions_total: resolution outcomes (counter)
    Labels: outcome (cached, primary, fallback, unresolved, skipped)
  - resolution_duration_seconds: live resolution latency (histogram)

Upstream Metrics:
  - upstream_requests_total: upstream HTTP calls (counter)
    Labels: source (letterboxd, tmdb), result (success, error, rate_limited)
  - upstream_request_duration_seconds: upstream latency (histogram)

Analysis Metrics:
  - analysis_duration_seconds: full profile analysis duration (histogram)
  - analyses_total: analyses by outcome (counter)
  - analysis_film_count: watched films per profile (histogram)

Circuit Breaker Metrics:
  - circuit_breaker_state: current state (gauge, 0=closed 1=half-open 2=open)
  - circuit_breaker_requests_total / circuit_breaker_state_transitions_total
*/
package metrics
