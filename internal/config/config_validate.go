// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateLetterboxd(); err != nil {
		return err
	}

	if err := c.validateTMDB(); err != nil {
		return err
	}

	if err := c.validateResolver(); err != nil {
		return err
	}

	if err := c.validatePipeline(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout < time.Second {
		return fmt.Errorf("HTTP_TIMEOUT must be at least 1s")
	}
	if c.Server.ShutdownTimeout < time.Second {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be at least 1s")
	}
	return nil
}

// validateStore validates metadata store configuration
func (c *Config) validateStore() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required when STORE_IN_MEMORY=false")
	}
	if c.Store.GCInterval < time.Minute {
		return fmt.Errorf("STORE_GC_INTERVAL must be at least 1m")
	}
	return nil
}

// Letterboxd limit constants
const (
	maxProfilePages  = 128
	maxFetchRate     = 20.0
	maxFetchBurst    = 64
	minClientTimeout = time.Second
)

// validateLetterboxd validates Letterboxd scrape client configuration
func (c *Config) validateLetterboxd() error {
	if err := validateHTTPURL(c.Letterboxd.BaseURL, "LETTERBOXD_BASE_URL"); err != nil {
		return fmt.Errorf("LETTERBOXD_BASE_URL is invalid: %w", err)
	}
	if c.Letterboxd.MaxPages < 1 || c.Letterboxd.MaxPages > maxProfilePages {
		return fmt.Errorf("LETTERBOXD_MAX_PAGES must be between 1 and %d", maxProfilePages)
	}
	if c.Letterboxd.RequestTimeout < minClientTimeout {
		return fmt.Errorf("LETTERBOXD_REQUEST_TIMEOUT must be at least 1s")
	}
	if c.Letterboxd.RequestsPerSecond <= 0 || c.Letterboxd.RequestsPerSecond > maxFetchRate {
		return fmt.Errorf("LETTERBOXD_RATE_LIMIT must be between 0 and %.0f requests per second", maxFetchRate)
	}
	if c.Letterboxd.Burst < 1 || c.Letterboxd.Burst > maxFetchBurst {
		return fmt.Errorf("LETTERBOXD_BURST must be between 1 and %d", maxFetchBurst)
	}
	return nil
}

// validateTMDB validates TMDB fallback configuration (only if enabled)
func (c *Config) validateTMDB() error {
	if !c.TMDB.Enabled {
		return nil // fallback source is optional
	}

	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required when TMDB_ENABLED=true")
	}
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL"); err != nil {
		return fmt.Errorf("TMDB_BASE_URL is invalid: %w", err)
	}
	if c.TMDB.RequestTimeout < minClientTimeout {
		return fmt.Errorf("TMDB_REQUEST_TIMEOUT must be at least 1s")
	}
	return nil
}

// Resolver limit constants
const (
	maxResolverConcurrency = 64
	maxNewFilmsCeiling     = 10000
)

// validateResolver validates film resolver configuration
func (c *Config) validateResolver() error {
	if c.Resolver.Concurrency < 1 || c.Resolver.Concurrency > maxResolverConcurrency {
		return fmt.Errorf("RESOLVER_CONCURRENCY must be between 1 and %d", maxResolverConcurrency)
	}
	if c.Resolver.MaxNewFilms < 0 || c.Resolver.MaxNewFilms > maxNewFilmsCeiling {
		return fmt.Errorf("RESOLVER_MAX_NEW_FILMS must be between 0 and %d", maxNewFilmsCeiling)
	}
	return nil
}

// validatePipeline validates analysis pipeline configuration
func (c *Config) validatePipeline() error {
	if c.Pipeline.Deadline < 5*time.Second {
		return fmt.Errorf("PIPELINE_DEADLINE must be at least 5s")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateSecurity validates rate limiting and CORS configuration bounds.
// Ensures rate limit values are within sensible ranges to prevent
// misconfiguration that could lead to DoS or ineffective protection.
func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d",
			minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between 1s and 1h")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

// validateHTTPURL validates that a URL is properly formatted for HTTP/HTTPS services.
// Validates: scheme (http/https), host present, no paths or query params.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	// Allow trailing slash but no other paths. TMDB is the exception:
	// its base URL carries a /3 version segment.
	if parsedURL.Path != "" && parsedURL.Path != "/" && parsedURL.Path != "/3" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", fieldName, parsedURL.Path)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
