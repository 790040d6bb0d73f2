// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

// Package api provides the HTTP surface: the analyze endpoint, store
// statistics, health probes, and the Prometheus metrics endpoint, all
// routed through chi with rate limiting and CORS.
package api
