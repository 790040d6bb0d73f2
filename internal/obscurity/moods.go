// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package obscurity

// MoodCategory maps one mood label to the genres that vote for it. A genre
// may appear in more than one category; each occurrence counts as a
// separate vote and the normalization step absorbs the overlap, so the
// resulting percentages are vote shares rather than exclusive
// probabilities.
type MoodCategory struct {
	Name   string
	Genres []string
}

// DefaultMoods is the built-in genre-to-mood table. It is heuristic, not
// canonical - callers wanting different labels pass their own table to New.
func DefaultMoods() []MoodCategory {
	return []MoodCategory{
		{Name: "Dark & Intense", Genres: []string{"Horror", "Thriller", "Crime", "War", "Mystery"}},
		{Name: "Fun & Light", Genres: []string{"Comedy", "Animation", "Family", "Music"}},
		{Name: "Emotional & Deep", Genres: []string{"Drama", "Romance", "History"}},
		{Name: "Adventurous", Genres: []string{"Action", "Adventure", "Science Fiction", "Fantasy", "Western"}},
		{Name: "Thought-Provoking", Genres: []string{"Documentary", "Mystery", "Science Fiction"}},
	}
}
