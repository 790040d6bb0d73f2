// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

// Package obscurity scores a resolved film set.
//
// The per-film contribution compresses power-law popularity through a log
// scale anchored to the set's own maximum; the composite blends the mean
// contribution with country and decade diversity terms. The package also
// produces every breakdown aggregate of an analysis: frequency counts,
// ranked film lists, mood shares, and the rating histogram.
package obscurity
