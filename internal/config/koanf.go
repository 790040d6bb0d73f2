// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/obscura/config.yaml",
	"/etc/obscura/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8338,
			Timeout:         90 * time.Second, // must exceed the pipeline deadline
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Path:       "/data/obscura",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		Letterboxd: LetterboxdConfig{
			BaseURL:           "https://letterboxd.com",
			MaxPages:          25, // ~1800 films; profiles order by watch date so later pages are older
			RequestTimeout:    30 * time.Second,
			RequestsPerSecond: 3.0,
			Burst:             3,
		},
		TMDB: TMDBConfig{
			Enabled:        false, // opt-in, requires an API key
			APIKey:         "",
			BaseURL:        "https://api.themoviedb.org/3",
			RequestTimeout: 15 * time.Second,
		},
		Resolver: ResolverConfig{
			Concurrency: 8,
			MaxNewFilms: 20,
		},
		Pipeline: PipelineConfig{
			Deadline: 60 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     30,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML file (if present)
//  3. Environment variables: highest priority
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variables map to koanf paths via envTransformFunc:
	// RESOLVER_MAX_NEW_FILMS -> resolver.max_new_films
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, environment override first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines config paths parsed as comma-separated slices
// when they arrive as env-var strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings but the config expects
// slices; YAML-sourced slices pass through untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, preventing random
// environment variables from polluting the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_timeout":          "server.timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",

		// Store mappings
		"store_path":        "store.path",
		"store_in_memory":   "store.in_memory",
		"store_gc_interval": "store.gc_interval",

		// Letterboxd mappings
		"letterboxd_base_url":        "letterboxd.base_url",
		"letterboxd_max_pages":       "letterboxd.max_pages",
		"letterboxd_request_timeout": "letterboxd.request_timeout",
		"letterboxd_rate_limit":      "letterboxd.requests_per_second",
		"letterboxd_burst":           "letterboxd.burst",

		// TMDB mappings
		"tmdb_enabled":         "tmdb.enabled",
		"tmdb_api_key":         "tmdb.api_key",
		"tmdb_base_url":        "tmdb.base_url",
		"tmdb_request_timeout": "tmdb.request_timeout",

		// Resolver mappings
		"resolver_concurrency":   "resolver.concurrency",
		"resolver_max_new_films": "resolver.max_new_films",

		// Pipeline mappings
		"pipeline_deadline": "pipeline.deadline",

		// Security mappings
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
