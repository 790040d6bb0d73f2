// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

// Package analyzer orchestrates one analysis request end to end: watched
// list pagination, cache-first film resolution, and scoring. Once the
// watched list is in hand the pipeline never fails outright; it degrades
// to a best-effort result under its soft deadline.
package analyzer
