// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

// Package middleware provides HTTP middleware: request ID propagation
// and Prometheus request instrumentation. Rate limiting and CORS come
// from go-chi and are wired directly in the router.
package middleware
