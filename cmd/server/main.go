// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

// Package main is the entry point for the Obscura server application.
//
// Obscura analyzes public Letterboxd profiles and scores how obscure a
// user's film taste is. It scrapes a profile's watched-films pages,
// resolves per-film metadata (Letterboxd film pages first, TMDB as a
// fallback), caches resolved records in BadgerDB, and serves the
// resulting analysis over a REST API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Store: Open the BadgerDB film metadata cache
//  3. Clients: Letterboxd scraper, optional TMDB client behind a circuit breaker
//  4. Pipeline: film resolver, obscurity engine, and analysis orchestrator
//  5. HTTP Server: REST API with Prometheus metrics
//  6. Supervisor: suture tree running the HTTP server and store maintenance
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (e.g. RESOLVER_MAX_NEW_FILMS -> resolver.max_new_films)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// TMDB fallback resolution is optional:
//   - TMDB_ENABLED=true, TMDB_API_KEY=your-v3-api-key
//
// Without TMDB the resolver works Letterboxd-only; films whose pages
// cannot be fetched are negative-cached as unresolved.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes the film store
//
// # Example Usage
//
// Cache-only local run (no live resolution):
//
//	export RESOLVER_MAX_NEW_FILMS=0
//	./obscura
//
// Full pipeline with TMDB fallback:
//
//	export TMDB_ENABLED=true
//	export TMDB_API_KEY=your-api-key
//	./obscura
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/obscura/internal/analyzer"
	"github.com/tomtom215/obscura/internal/api"
	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/letterboxd"
	"github.com/tomtom215/obscura/internal/logging"
	"github.com/tomtom215/obscura/internal/obscurity"
	"github.com/tomtom215/obscura/internal/resolve"
	"github.com/tomtom215/obscura/internal/store"
	"github.com/tomtom215/obscura/internal/supervisor"
	"github.com/tomtom215/obscura/internal/supervisor/services"
	"github.com/tomtom215/obscura/internal/tmdb"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Obscura with supervisor tree")
	logging.Info().
		Str("store_path", cfg.Store.Path).
		Bool("store_in_memory", cfg.Store.InMemory).
		Bool("tmdb_enabled", cfg.TMDB.Enabled).
		Int("max_new_films", cfg.Resolver.MaxNewFilms).
		Msg("Configuration loaded")

	// Open the film metadata cache
	filmStore, err := store.Open(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open film store")
	}
	defer func() {
		if err := filmStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing film store")
		}
	}()
	logging.Info().Msg("Film store opened")

	// Letterboxd scraping client (primary metadata source)
	lbClient := letterboxd.NewClient(cfg.Letterboxd)

	// TMDB fallback client behind a circuit breaker. The circuit breaker
	// prevents hammering TMDB during an outage; the resolver treats a
	// nil client as "fallback disabled".
	var tmdbClient tmdb.ClientInterface
	if cfg.TMDB.Enabled {
		tmdbClient = tmdb.NewCircuitBreakerClient(cfg.TMDB)
		logging.Info().Msg("TMDB fallback resolution enabled")
	} else {
		logging.Info().Msg("TMDB fallback resolution disabled - Letterboxd-only mode")
	}

	if cfg.Resolver.MaxNewFilms == 0 {
		logging.Warn().Msg("Live resolution disabled (RESOLVER_MAX_NEW_FILMS=0) - serving cached metadata only")
	}

	// Analysis pipeline: resolver -> obscurity engine -> orchestrator
	resolver := resolve.New(filmStore, lbClient, tmdbClient, cfg.Resolver.Concurrency, cfg.Resolver.MaxNewFilms)
	engine := obscurity.New(nil)
	analysisService := analyzer.New(lbClient, resolver, engine, cfg)

	handlers := api.NewHandlers(analysisService, filmStore)
	router := api.NewRouter(handlers, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tree.AddStoreService(services.NewStoreMaintenanceService(filmStore, cfg.Store.GCInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
