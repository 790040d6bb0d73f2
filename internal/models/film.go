// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package models

import (
	"fmt"
	"strings"
	"time"
)

// Source indicates which upstream produced a FilmRecord's enrichment data.
type Source string

const (
	// SourcePrimary marks records resolved from the Letterboxd film pages.
	SourcePrimary Source = "primary"

	// SourceFallback marks records whose gap fields were filled from the
	// TMDB fallback API after the primary source came up short.
	SourceFallback Source = "fallback"

	// SourceUnresolved marks records that carry no enrichment data. They
	// still count toward total_films but are excluded from every
	// popularity-weighted computation.
	SourceUnresolved Source = "unresolved"
)

// Identity is the normalized (title, year) key that deduplicates films
// across users and requests. The store is keyed by Identity alone - never
// by username.
type Identity struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// NewIdentity normalizes a raw title and year into a store identity.
// Normalization is lowercase with collapsed internal whitespace; release
// year 0 means "unknown" and is kept as-is so two unknown-year films with
// the same title share a record.
func NewIdentity(title string, year int) Identity {
	return Identity{
		Title: strings.Join(strings.Fields(strings.ToLower(title)), " "),
		Year:  year,
	}
}

// Key returns the store key for this identity.
func (id Identity) Key() string {
	return fmt.Sprintf("%s:%d", id.Title, id.Year)
}

// WatchedEntry is one film from a user's watched list as scraped from their
// profile. Immutable once produced by the profile fetcher.
type WatchedEntry struct {
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	Slug   string   `json:"slug,omitempty"`   // Letterboxd film slug, carried for primary resolution
	Rating *float64 `json:"rating,omitempty"` // personal rating, half-star increments
}

// Identity returns the normalized identity for this entry.
func (e WatchedEntry) Identity() Identity {
	return NewIdentity(e.Title, e.Year)
}

// FilmRecord is the enriched film metadata owned by the store. Records are
// created and updated only through the resolver's upsert path; upsert is
// last-writer-wins per identity.
type FilmRecord struct {
	Identity   Identity  `json:"identity"`
	Title      string    `json:"title"` // canonical title as reported by the winning source
	Year       int       `json:"year"`
	Slug       string    `json:"slug,omitempty"` // Letterboxd film slug when known
	Director   string    `json:"director,omitempty"`
	Genres     []string  `json:"genres,omitempty"`
	Countries  []string  `json:"countries,omitempty"`
	WatchCount *int64    `json:"watch_count,omitempty"` // Letterboxd watch count, the primary popularity proxy
	Popularity *float64  `json:"popularity,omitempty"`  // TMDB popularity, fallback proxy
	VoteCount  *int      `json:"vote_count,omitempty"`
	PosterRef  string    `json:"poster_ref,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
	Source     Source    `json:"source"`
}

// HasPopularitySignal reports whether the record carries any usable
// popularity data (a watch count or a TMDB popularity value). Unresolved
// records never do.
func (r *FilmRecord) HasPopularitySignal() bool {
	if r.Source == SourceUnresolved {
		return false
	}
	return r.WatchCount != nil || r.Popularity != nil
}

// Stale reports whether a cached record should be re-resolved. There is no
// time-based TTL - film metadata is near-immutable - so staleness only
// means "missing fields a complete record would have": no popularity signal
// or no genres. Cached UNRESOLVED records are always stale: metadata that
// appears upstream later gets picked up on a future request, budget
// permitting.
func (r *FilmRecord) Stale() bool {
	return !r.HasPopularitySignal() || len(r.Genres) == 0
}

// UnresolvedRecord builds the placeholder record stored for a film that
// could not be enriched from any source.
func UnresolvedRecord(entry WatchedEntry) FilmRecord {
	return FilmRecord{
		Identity:   entry.Identity(),
		Title:      entry.Title,
		Year:       entry.Year,
		Slug:       entry.Slug,
		ResolvedAt: time.Now().UTC(),
		Source:     SourceUnresolved,
	}
}

// ResolvedFilm joins a watched entry with its film record. It is the unit
// the obscurity engine operates on; transient, built per request, never
// persisted.
type ResolvedFilm struct {
	Entry  WatchedEntry
	Record FilmRecord
}

// StoreStats summarizes the metadata store contents.
type StoreStats struct {
	TotalRecords    int `json:"total_records"`
	ResolvedCount   int `json:"resolved_count"`
	UnresolvedCount int `json:"unresolved_count"`
}
