// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

/*
Package config provides centralized configuration management for Obscura.

Configuration is layered: built-in defaults, then an optional YAML file
(config.yaml, or the path named by CONFIG_PATH), then environment
variables. Later layers win. The merged result is validated before use.

The package organizes configuration into logical groups:

  - ServerConfig: HTTP server settings (host, port, timeouts)
  - StoreConfig: Badger metadata store path and GC interval
  - LetterboxdConfig: scrape client base URL, paging and rate limits
  - TMDBConfig: optional TMDB fallback source (API key, base URL)
  - ResolverConfig: resolution concurrency and new-film budget
  - PipelineConfig: per-analysis deadline
  - SecurityConfig: API rate limiting and CORS origins
  - LoggingConfig: level, format and caller reporting

Environment variables use flat names (HTTP_PORT, STORE_PATH,
LETTERBOXD_MAX_PAGES, TMDB_API_KEY, ...) mapped onto the nested
structure; see koanf.go for the full mapping table.
*/
package config
