// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

/*
Package store provides the persistent film metadata cache backed by BadgerDB.

Records are keyed by normalized (title, year) identity under the "film:"
prefix and serialized as JSON. The store is the first stop for every film
resolution: a complete hit avoids any upstream network traffic. Unresolved
records are stored too, recording the miss for stats while remaining
candidates for re-resolution on later requests.

Writes are last-writer-wins. The resolver is responsible for merging
primary and fallback data into a single record before upserting, so the
store itself stays a dumb KV layer.
*/
package store
