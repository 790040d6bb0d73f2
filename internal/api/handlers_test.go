// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/obscura/internal/analyzer"
	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/letterboxd"
	"github.com/tomtom215/obscura/internal/models"
	"github.com/tomtom215/obscura/internal/obscurity"
	"github.com/tomtom215/obscura/internal/resolve"
	"github.com/tomtom215/obscura/internal/store"
)

// stubLetterboxd serves canned profile pages and film metadata.
type stubLetterboxd struct {
	pages   map[string][]models.WatchedEntry // username -> page 1
	stats   map[string]*letterboxd.FilmStats
	details map[string]*letterboxd.FilmDetail
}

func (s *stubLetterboxd) FetchWatchedPage(ctx context.Context, username string, page int) ([]models.WatchedEntry, error) {
	entries, ok := s.pages[username]
	if !ok {
		return nil, letterboxd.ErrNotFound
	}
	if page > 1 {
		return nil, nil
	}
	return entries, nil
}

func (s *stubLetterboxd) FetchFilmStats(ctx context.Context, slug string) (*letterboxd.FilmStats, error) {
	if st, ok := s.stats[slug]; ok {
		return st, nil
	}
	return nil, letterboxd.ErrNotFound
}

func (s *stubLetterboxd) FetchFilmDetail(ctx context.Context, slug string) (*letterboxd.FilmDetail, error) {
	if d, ok := s.details[slug]; ok {
		return d, nil
	}
	return nil, letterboxd.ErrNotFound
}

func testServerConfig() *config.Config {
	return &config.Config{
		Letterboxd: config.LetterboxdConfig{MaxPages: 5},
		Pipeline:   config.PipelineConfig{Deadline: 5 * time.Second},
		Security: config.SecurityConfig{
			RateLimitDisabled: true,
		},
	}
}

func newTestHandler(t *testing.T, lb *stubLetterboxd, cfg *config.Config) http.Handler {
	t.Helper()
	s, err := store.Open(config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	resolver := resolve.New(s, lb, nil, 4, 100)
	a := analyzer.New(lb, resolver, obscurity.New(nil), cfg)
	return NewRouter(NewHandlers(a, s), cfg).Setup()
}

func defaultStub() *stubLetterboxd {
	return &stubLetterboxd{
		pages: map[string][]models.WatchedEntry{
			"cinephile": {
				{Title: "Stalker", Year: 1979, Slug: "stalker"},
				{Title: "Jaws", Year: 1975, Slug: "jaws"},
			},
			"newcomer": {},
		},
		stats: map[string]*letterboxd.FilmStats{
			"stalker": {Watches: 800_000},
			"jaws":    {Watches: 4_000_000},
		},
		details: map[string]*letterboxd.FilmDetail{
			"stalker": {Director: "Andrei Tarkovsky", Genres: []string{"Science Fiction"}, Countries: []string{"USSR"}},
			"jaws":    {Director: "Steven Spielberg", Genres: []string{"Thriller"}, Countries: []string{"United States of America"}},
		},
	}
}

func postAnalyze(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestAnalyzeEndpoint(t *testing.T) {
	handler := newTestHandler(t, defaultStub(), testServerConfig())

	rec := postAnalyze(handler, `{"username": "Cinephile"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag header")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	resp := decodeResponse(t, rec)
	if resp.Status != "success" {
		t.Errorf("Status = %q", resp.Status)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Data is %T", resp.Data)
	}
	if data["username"] != "cinephile" {
		t.Errorf("username = %v, want cinephile", data["username"])
	}
	if data["total_films"].(float64) != 2 {
		t.Errorf("total_films = %v, want 2", data["total_films"])
	}
	score := data["obscurity_score"].(float64)
	if score < 0 || score > 100 {
		t.Errorf("obscurity_score = %v out of range", score)
	}
}

func TestAnalyzeProfileNotFound(t *testing.T) {
	handler := newTestHandler(t, defaultStub(), testServerConfig())

	rec := postAnalyze(handler, `{"username": "ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != "PROFILE_NOT_FOUND" {
		t.Errorf("Error = %+v, want PROFILE_NOT_FOUND", resp.Error)
	}
}

func TestAnalyzeEmptyProfile(t *testing.T) {
	handler := newTestHandler(t, defaultStub(), testServerConfig())

	rec := postAnalyze(handler, `{"username": "newcomer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty profile must respond 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["total_films"].(float64) != 0 {
		t.Errorf("total_films = %v, want 0", data["total_films"])
	}
	if data["obscurity_score"].(float64) != 0 {
		t.Errorf("obscurity_score = %v, want 0", data["obscurity_score"])
	}
}

func TestAnalyzeInvalidBody(t *testing.T) {
	handler := newTestHandler(t, defaultStub(), testServerConfig())

	rec := postAnalyze(handler, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != "INVALID_REQUEST" {
		t.Errorf("Error = %+v, want INVALID_REQUEST", resp.Error)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	handler := newTestHandler(t, defaultStub(), testServerConfig())

	rec := postAnalyze(handler, `{"username": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Error = %+v, want VALIDATION_ERROR", resp.Error)
	}
}

func TestAnalyzeOddUsernamesReachThePipeline(t *testing.T) {
	handler := newTestHandler(t, defaultStub(), testServerConfig())

	// Only non-empty is enforced up front; usernames that cannot exist
	// fail the profile fetch and surface as 404, not 400.
	for _, body := range []string{
		`{"username": "../../etc/passwd"}`,
		`{"username": "has spaces"}`,
	} {
		rec := postAnalyze(handler, body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("body %s: status = %d, want 404", body, rec.Code)
			continue
		}
		resp := decodeResponse(t, rec)
		if resp.Error == nil || resp.Error.Code != "PROFILE_NOT_FOUND" {
			t.Errorf("body %s: Error = %+v, want PROFILE_NOT_FOUND", body, resp.Error)
		}
	}
}

func TestStoreStatsEndpoint(t *testing.T) {
	handler := newTestHandler(t, defaultStub(), testServerConfig())

	// Analyze first so the store holds records
	postAnalyze(handler, `{"username": "cinephile"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["total_records"].(float64) != 2 {
		t.Errorf("total_records = %v, want 2", data["total_records"])
	}
	if data["resolved_count"].(float64) != 2 {
		t.Errorf("resolved_count = %v, want 2", data["resolved_count"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestHandler(t, defaultStub(), testServerConfig())

	for _, path := range []string{"/health/live", "/health/ready", "/api/v1/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t, defaultStub(), testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_active_requests") {
		t.Error("metrics output missing api_active_requests series")
	}
}

func TestRateLimiting(t *testing.T) {
	cfg := testServerConfig()
	cfg.Security.RateLimitDisabled = false
	cfg.Security.RateLimitReqs = 2
	cfg.Security.RateLimitWindow = time.Minute
	handler := newTestHandler(t, defaultStub(), cfg)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	got := sanitizeLogValue("user\nname\tx")
	if strings.ContainsAny(got, "\n\t") {
		t.Errorf("control characters survived: %q", got)
	}
}
