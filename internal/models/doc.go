// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

// Package models defines the data types shared across the Obscura pipeline:
// watched entries scraped from a profile, enriched film records owned by the
// metadata store, the per-request resolved-film join, the analysis result
// payload, and the HTTP response envelope.
//
// Lifecycle: FilmRecord values persist indefinitely in the store and are
// shared across all users' requests. WatchedEntry, ResolvedFilm, and
// AnalysisResult are request-scoped and discarded after the response.
package models
