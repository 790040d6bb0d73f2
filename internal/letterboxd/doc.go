// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

/*
Package letterboxd scrapes Letterboxd's public pages, which is the primary
metadata source since Letterboxd exposes no public API.

Three page types are fetched:

  - /{username}/films/page/{n}/ - paginated watched-film listings
  - /csi/film/{slug}/stats/ - the stats fragment carrying watch counts
  - /film/{slug}/ - the film page with director, genres and countries

All requests pass through a shared token-bucket rate limiter and retry
HTTP 429 with exponential backoff honoring Retry-After. Markup changes on
Letterboxd's side degrade gracefully: parsers return partial results
rather than errors when expected elements are missing.
*/
package letterboxd
