// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package models

// CountBucket is one entry of an ordered frequency breakdown. Breakdowns
// are serialized as ordered arrays rather than JSON objects so that the
// descending-count ordering (ties broken by first appearance in the
// resolved sequence) survives the wire format.
type CountBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MoodBucket is one mood category's share of the genre votes, as a
// percentage. Percentages are normalized to sum to 100 across observed
// categories; they are vote shares, not mutually exclusive probabilities.
type MoodBucket struct {
	Mood    string  `json:"mood"`
	Percent float64 `json:"percent"`
}

// RatingBucket is one half-star histogram bucket of personal ratings.
type RatingBucket struct {
	Rating string `json:"rating"` // "0.5" .. "5.0"
	Count  int    `json:"count"`
}

// FilmSummary is the per-film payload used in the most-obscure,
// most-mainstream, and films-by-decade lists.
type FilmSummary struct {
	Title          string   `json:"title"`
	Year           int      `json:"year,omitempty"`
	Director       string   `json:"director,omitempty"`
	WatchCount     *int64   `json:"watches,omitempty"`
	Popularity     *float64 `json:"popularity,omitempty"`
	PosterRef      string   `json:"poster_ref,omitempty"`
	ObscurityScore float64  `json:"obscurity_score"`
}

// DecadeGroup holds the most obscure films of one decade.
type DecadeGroup struct {
	Decade string        `json:"decade"` // "1970s"
	Films  []FilmSummary `json:"films"`
}

// AnalysisResult is the aggregate output of one analysis request. Built
// once per request, immutable after construction, never persisted - no
// user data is retained between requests.
type AnalysisResult struct {
	Username       string   `json:"username"`
	ObscurityScore float64  `json:"obscurity_score"`
	TotalFilms     int      `json:"total_films"`
	ResolvedFilms  int      `json:"resolved_films"` // films with usable popularity data
	AverageRating  *float64 `json:"average_rating,omitempty"`
	MedianWatches  *int64   `json:"median_watches,omitempty"`

	TopGenres          []CountBucket  `json:"top_genres"`
	DecadeBreakdown    []CountBucket  `json:"decade_breakdown"`
	CountryBreakdown   []CountBucket  `json:"country_breakdown"`
	DirectorCounts     []CountBucket  `json:"director_counts"`
	MoodAnalysis       []MoodBucket   `json:"mood_analysis"`
	RatingDistribution []RatingBucket `json:"rating_distribution"`

	MostObscureFilms    []FilmSummary `json:"most_obscure_films"`
	MostMainstreamFilms []FilmSummary `json:"most_mainstream_films"`
	FilmsByDecade       []DecadeGroup `json:"films_by_decade"`

	// Warning is set when the pipeline degraded (e.g. upstream metadata
	// sources unavailable for most live resolutions) but still produced a
	// best-effort score.
	Warning string `json:"warning,omitempty"`
}
