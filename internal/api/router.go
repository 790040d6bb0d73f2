// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/middleware"
)

// healthRateLimit is deliberately permissive: health endpoints are polled
// by orchestrators and monitors.
const healthRateLimit = 1000

// Router builds the HTTP handler tree.
type Router struct {
	handlers *Handlers
	cfg      *config.Config
}

// NewRouter creates a Router.
func NewRouter(handlers *Handlers, cfg *config.Config) *Router {
	return &Router{handlers: handlers, cfg: cfg}
}

// Setup configures all routes and the global middleware stack.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. CORS is global
	// so OPTIONS preflight works everywhere.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.corsOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(healthRateLimit, time.Minute))
		r.Get("/live", rt.handlers.HealthLive)
		r.Get("/ready", rt.handlers.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if !rt.cfg.Security.RateLimitDisabled {
			r.Use(httprate.LimitByRealIP(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
		}
		r.Use(middleware.PrometheusMetrics)

		r.Post("/analyze", rt.handlers.Analyze)
		r.Get("/stats", rt.handlers.StoreStats)
		r.Get("/health", rt.handlers.Health)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (rt *Router) corsOrigins() []string {
	if len(rt.cfg.Security.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return rt.cfg.Security.CORSOrigins
}
