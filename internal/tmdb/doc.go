// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

/*
Package tmdb is the fallback metadata source: a minimal TMDB v3 API client
used when Letterboxd scraping yields no popularity signal for a film.

FindFilm performs a year-constrained /search/movie query, retries without
the year when empty, then fetches /movie/{id}?append_to_response=credits
for genres, production countries and the director credit.

Production callers wrap the client in CircuitBreakerClient so a TMDB
outage degrades analyses (films fall back to unresolved) instead of
stalling them. ErrNoMatch is treated as a successful answer by the
breaker.
*/
package tmdb
