// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/obscura/internal/logging"
)

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("request ID missing from context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("response header = %q, context = %q", got, seen)
	}
}

func TestRequestIDFromUpstreamProxy(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if logging.RequestIDFromContext(r.Context()) != seen {
			t.Error("logging context missing the request ID")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "upstream-id-42" {
		t.Errorf("request ID = %q, want the proxy-supplied one", seen)
	}
}

func TestPrometheusMetricsPreservesResponse(t *testing.T) {
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
