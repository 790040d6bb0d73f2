// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

// Package resolve turns watched-film entries into enriched film records.
//
// Resolution is cache-first: complete records already in the metadata
// store are served as-is. Misses, stale records and previously
// unresolved films go live against Letterboxd (watch counts, film page
// metadata) with TMDB filling remaining gaps, bounded by a per-request
// budget of new films so one large profile cannot monopolize upstream
// capacity. When the budget is spent, the cached record - unresolved
// included - is served instead.
package resolve
