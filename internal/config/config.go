// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package config

import "time"

// Config is the top-level application configuration, loaded via Koanf v2
// with layered sources (highest priority wins): environment variables,
// optional config.yaml, built-in defaults.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Letterboxd LetterboxdConfig `koanf:"letterboxd"`
	TMDB       TMDBConfig       `koanf:"tmdb"` // Optional: fallback metadata API
	Resolver   ResolverConfig   `koanf:"resolver"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`          // per-request read/write timeout
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"` // graceful shutdown grace period
}

// StoreConfig holds metadata store settings. The store is a cross-request
// cache keyed purely by film identity, never by username.
type StoreConfig struct {
	Path       string        `koanf:"path"`        // BadgerDB directory
	InMemory   bool          `koanf:"in_memory"`   // ephemeral store, no persistence across restarts
	GCInterval time.Duration `koanf:"gc_interval"` // badger value-log GC cadence
}

// LetterboxdConfig holds the primary source (profile scraping) settings.
type LetterboxdConfig struct {
	BaseURL           string        `koanf:"base_url"`
	MaxPages          int           `koanf:"max_pages"` // pagination hard cap per profile
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"` // outbound politeness limit
	Burst             int           `koanf:"burst"`
}

// TMDBConfig holds the fallback metadata API settings. When disabled (or no
// API key is set) resolution uses the primary source only.
type TMDBConfig struct {
	Enabled        bool          `koanf:"enabled"`
	APIKey         string        `koanf:"api_key"`
	BaseURL        string        `koanf:"base_url"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// ResolverConfig bounds live film resolution.
type ResolverConfig struct {
	// Concurrency is the maximum number of simultaneous outbound fetch
	// operations per request.
	Concurrency int `koanf:"concurrency"`

	// MaxNewFilms caps newly-resolved films per request. 0 disables live
	// resolution entirely (cache-only mode); raise it for trusted or
	// offline warm-up runs.
	MaxNewFilms int `koanf:"max_new_films"`
}

// PipelineConfig holds orchestrator settings.
type PipelineConfig struct {
	// Deadline is the soft ceiling on total analysis wall-time. On expiry
	// in-flight resolutions are abandoned to the unresolved state and the
	// pipeline proceeds to scoring with whatever resolved.
	Deadline time.Duration `koanf:"deadline"`
}

// SecurityConfig holds the inbound rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load loads and validates configuration. It is the single entry point used
// by main().
func Load() (*Config, error) {
	return LoadWithKoanf()
}
