// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package tmdb

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/logging"
	"github.com/tomtom215/obscura/internal/metrics"
)

// CircuitBreakerClient wraps Client with the circuit breaker pattern to
// prevent cascading failures when the TMDB API is unavailable or slow.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. Tests should mock the
// underlying client, not the breaker.
type CircuitBreakerClient struct {
	client ClientInterface
	cb     *gobreaker.CircuitBreaker[*MovieDetail]
	name   string
}

// NewCircuitBreakerClient creates a TMDB client with circuit breaker.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(cfg config.TMDBConfig) *CircuitBreakerClient {
	return newCircuitBreakerClient(NewClient(cfg))
}

func newCircuitBreakerClient(client ClientInterface) *CircuitBreakerClient {
	cbName := "tmdb-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*MovieDetail](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		// ErrNoMatch is an answer, not an outage; don't count it
		// against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoMatch)
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// FindFilm searches TMDB through the circuit breaker.
func (cbc *CircuitBreakerClient) FindFilm(ctx context.Context, title string, year int) (*MovieDetail, error) {
	detail, err := cbc.cb.Execute(func() (*MovieDetail, error) {
		return cbc.client.FindFilm(ctx, title, year)
	})

	switch {
	case err == nil || errors.Is(err, ErrNoMatch):
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)

	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
		logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")

	default:
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		counts := cbc.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
	}

	if err != nil {
		return nil, err
	}
	return detail, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
