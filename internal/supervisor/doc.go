// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

// Package supervisor builds the suture supervision tree: a store layer
// for metadata store maintenance and an api layer for the HTTP server,
// with failure isolation between the two.
package supervisor
