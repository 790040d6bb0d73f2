// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/obscura/internal/analyzer"
	"github.com/tomtom215/obscura/internal/logging"
	"github.com/tomtom215/obscura/internal/store"
)

// maxRequestBody caps the analyze request body. The payload is a single
// username, so anything past a kilobyte is garbage.
const maxRequestBody = 1 << 10

// AnalyzeRequest is the POST /api/v1/analyze payload. The username is
// only required to be non-empty; an impossible username simply fails the
// profile fetch with a 404.
type AnalyzeRequest struct {
	Username string `json:"username" validate:"required"`
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	analyzer  *analyzer.Analyzer
	store     store.FilmStore
	startTime time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(a *analyzer.Analyzer, s store.FilmStore) *Handlers {
	return &Handlers{
		analyzer:  a,
		store:     s,
		startTime: time.Now(),
	}
}

// Analyze runs the full analysis pipeline for one username.
//
// POST /api/v1/analyze {"username": "..."}
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON with a username field", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("username", sanitizeLogValue(req.Username)).
		Msg("analysis requested")

	result, err := h.analyzer.Analyze(r.Context(), req.Username)
	switch {
	case errors.Is(err, analyzer.ErrProfileNotFound):
		respondError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "profile does not exist or is private", nil)
	case errors.Is(err, analyzer.ErrEmptyProfile):
		// A legitimate outcome, not an error: 200 with the zero-film
		// result.
		respondSuccess(w, result, start)
	case errors.Is(err, analyzer.ErrUpstreamUnavailable):
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "source site unreachable, try again later", err)
	case err != nil:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "analysis failed", err)
	default:
		respondSuccess(w, result, start)
	}
}

// StoreStats reports metadata store statistics.
//
// GET /api/v1/stats
func (h *Handlers) StoreStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "failed to read store statistics", err)
		return
	}
	respondSuccess(w, stats, start)
}

// Health reports service health and uptime.
//
// GET /api/v1/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	}, start)
}

// HealthLive is the liveness probe.
//
// GET /health/live
func (h *Handlers) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// HealthReady is the readiness probe: the service is ready once the
// metadata store answers.
//
// GET /health/ready
func (h *Handlers) HealthReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Stats(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "metadata store unavailable", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
