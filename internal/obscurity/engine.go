// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package obscurity

import (
	"math"
	"sort"
	"strconv"

	"github.com/tomtom215/obscura/internal/models"
)

const (
	topBreakdown   = 10 // genre/country/director buckets kept
	topFilms       = 5  // most-obscure / most-mainstream list length
	filmsPerDecade = 5

	// referenceCeiling anchors the log scale when the film set is too
	// small to supply its own maximum. Roughly the watch count of the
	// biggest blockbusters on Letterboxd.
	referenceCeiling = 5_000_000

	// diversityCeiling is the distinct-country/decade count at which the
	// diversity terms saturate.
	diversityCeiling = 8

	meanWeight    = 0.70
	countryWeight = 0.15
	decadeWeight  = 0.15
)

// Engine computes the composite obscurity score and all breakdown
// aggregates from a resolved film set. Stateless and safe for concurrent
// use.
type Engine struct {
	moods      []MoodCategory
	genreMoods map[string][]int // genre -> indices into moods
}

// New creates an Engine with the given mood table. A nil table selects
// DefaultMoods.
func New(moods []MoodCategory) *Engine {
	if moods == nil {
		moods = DefaultMoods()
	}
	genreMoods := make(map[string][]int)
	for i, m := range moods {
		for _, g := range m.Genres {
			genreMoods[g] = append(genreMoods[g], i)
		}
	}
	return &Engine{moods: moods, genreMoods: genreMoods}
}

// scoredFilm pairs a resolved film with its per-film obscurity
// contribution. pos is the film's position in the input sequence and
// breaks ties in every ranked list.
type scoredFilm struct {
	film  models.ResolvedFilm
	score float64
	pos   int
}

// Score computes the full analysis for one resolved film set. Films
// without usable popularity data are excluded from the popularity-weighted
// terms but still counted in TotalFilms and the frequency breakdowns.
func (e *Engine) Score(films []models.ResolvedFilm) *models.AnalysisResult {
	result := &models.AnalysisResult{TotalFilms: len(films)}
	if len(films) == 0 {
		return result
	}

	scored := e.scoreFilms(films)
	result.ResolvedFilms = len(scored)

	countryDiv := diversity(distinctCountries(films))
	decadeDiv := diversity(distinctDecades(films))

	var composite float64
	if len(scored) == 0 {
		// No popularity signal anywhere: the diversity terms are all
		// we have. Zero if there is no diversity signal either.
		composite = countryWeight*countryDiv + decadeWeight*decadeDiv
	} else {
		var sum float64
		for _, s := range scored {
			sum += s.score
		}
		mean := sum / float64(len(scored))
		composite = meanWeight*mean + countryWeight*countryDiv + decadeWeight*decadeDiv
	}
	result.ObscurityScore = round1(clamp(composite))

	result.TopGenres = countGenres(films).buckets(topBreakdown)
	result.CountryBreakdown = countCountries(films).buckets(topBreakdown)
	result.DirectorCounts = countDirectors(films).buckets(topBreakdown)
	result.DecadeBreakdown = countDecades(films).buckets(0)

	result.AverageRating, result.RatingDistribution = ratingStats(films)
	result.MedianWatches = medianWatches(films)

	result.MostObscureFilms = topByScore(scored, true)
	result.MostMainstreamFilms = topByScore(scored, false)
	result.FilmsByDecade = groupByDecade(scored)
	result.MoodAnalysis = e.moodAnalysis(films)

	return result
}

// scoreFilms computes per-film contributions for every film with a usable
// popularity signal, preserving input order.
func (e *Engine) scoreFilms(films []models.ResolvedFilm) []scoredFilm {
	type signal struct {
		value    float64
		zeroVote bool
		pos      int
	}
	var signals []signal
	for i, f := range films {
		r := f.Record
		if !r.HasPopularitySignal() {
			continue
		}
		s := signal{pos: i}
		if r.WatchCount != nil {
			s.value = float64(*r.WatchCount)
		} else {
			s.value = *r.Popularity
			// Valid popularity but zero votes: maximally obscure,
			// not missing data.
			s.zeroVote = r.VoteCount != nil && *r.VoteCount == 0
		}
		signals = append(signals, s)
	}
	if len(signals) == 0 {
		return nil
	}

	// Popularity is power-law distributed, so contributions rescale
	// against the log of the set's own maximum. Degenerate sets fall
	// back to a fixed ceiling.
	ceiling := float64(referenceCeiling)
	if len(signals) >= 2 {
		var max float64
		for _, s := range signals {
			if s.value > max {
				max = s.value
			}
		}
		if max > 0 {
			ceiling = max
		}
	}

	logCeiling := math.Log1p(ceiling)
	scored := make([]scoredFilm, 0, len(signals))
	for _, s := range signals {
		score := 100.0
		if !s.zeroVote && s.value > 0 {
			score = clamp(100 * (1 - math.Log1p(s.value)/logCeiling))
		}
		scored = append(scored, scoredFilm{film: films[s.pos], score: score, pos: s.pos})
	}
	return scored
}

// diversity maps a distinct-category count to a 0-100 term with
// diminishing returns, saturating at diversityCeiling.
func diversity(n int) float64 {
	if n <= 0 {
		return 0
	}
	ratio := math.Log1p(float64(n)) / math.Log1p(float64(diversityCeiling))
	return math.Min(1, ratio) * 100
}

func distinctCountries(films []models.ResolvedFilm) int {
	seen := make(map[string]struct{})
	for _, f := range films {
		for _, c := range f.Record.Countries {
			seen[c] = struct{}{}
		}
	}
	return len(seen)
}

func distinctDecades(films []models.ResolvedFilm) int {
	seen := make(map[int]struct{})
	for _, f := range films {
		if y := f.Record.Year; y != 0 {
			seen[(y/10)*10] = struct{}{}
		}
	}
	return len(seen)
}

// counter accumulates frequency counts while remembering first-seen
// order, which breaks ties when buckets are sorted by count.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(name string) {
	if name == "" {
		return
	}
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// buckets returns the counts sorted descending, ties broken by first-seen
// order. limit 0 keeps everything.
func (c *counter) buckets(limit int) []models.CountBucket {
	buckets := make([]models.CountBucket, 0, len(c.order))
	for _, name := range c.order {
		buckets = append(buckets, models.CountBucket{Name: name, Count: c.counts[name]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	if limit > 0 && len(buckets) > limit {
		buckets = buckets[:limit]
	}
	return buckets
}

func countGenres(films []models.ResolvedFilm) *counter {
	c := newCounter()
	for _, f := range films {
		for _, g := range f.Record.Genres {
			c.add(g)
		}
	}
	return c
}

func countCountries(films []models.ResolvedFilm) *counter {
	c := newCounter()
	for _, f := range films {
		for _, country := range f.Record.Countries {
			c.add(country)
		}
	}
	return c
}

func countDirectors(films []models.ResolvedFilm) *counter {
	c := newCounter()
	for _, f := range films {
		c.add(f.Record.Director)
	}
	return c
}

func countDecades(films []models.ResolvedFilm) *counter {
	c := newCounter()
	for _, f := range films {
		if y := f.Record.Year; y != 0 {
			c.add(decadeLabel(y))
		}
	}
	return c
}

func decadeLabel(year int) string {
	return strconv.Itoa((year/10)*10) + "s"
}

// ratingStats computes the average personal rating and the half-star
// histogram, buckets ordered ascending by rating.
func ratingStats(films []models.ResolvedFilm) (*float64, []models.RatingBucket) {
	counts := make(map[float64]int)
	var sum float64
	var n int
	for _, f := range films {
		if f.Entry.Rating == nil {
			continue
		}
		r := *f.Entry.Rating
		counts[r]++
		sum += r
		n++
	}
	if n == 0 {
		return nil, nil
	}

	values := make([]float64, 0, len(counts))
	for r := range counts {
		values = append(values, r)
	}
	sort.Float64s(values)

	buckets := make([]models.RatingBucket, 0, len(values))
	for _, r := range values {
		buckets = append(buckets, models.RatingBucket{
			Rating: strconv.FormatFloat(r, 'f', 1, 64),
			Count:  counts[r],
		})
	}

	avg := round2(sum / float64(n))
	return &avg, buckets
}

// medianWatches returns the median Letterboxd watch count, or nil when no
// film carries one. Even-sized sets take the integer mean of the middle
// pair.
func medianWatches(films []models.ResolvedFilm) *int64 {
	var watches []int64
	for _, f := range films {
		if f.Record.WatchCount != nil {
			watches = append(watches, *f.Record.WatchCount)
		}
	}
	if len(watches) == 0 {
		return nil
	}
	sort.Slice(watches, func(i, j int) bool { return watches[i] < watches[j] })
	n := len(watches)
	var median int64
	if n%2 == 0 {
		median = (watches[n/2-1] + watches[n/2]) / 2
	} else {
		median = watches[n/2]
	}
	return &median
}

// topByScore returns the top films by contribution, most obscure
// (descending) or most mainstream (ascending). Ties keep input order.
func topByScore(scored []scoredFilm, obscure bool) []models.FilmSummary {
	ranked := make([]scoredFilm, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		if obscure {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].score < ranked[j].score
	})
	if len(ranked) > topFilms {
		ranked = ranked[:topFilms]
	}
	summaries := make([]models.FilmSummary, 0, len(ranked))
	for _, s := range ranked {
		summaries = append(summaries, summarize(s))
	}
	return summaries
}

// groupByDecade returns the most obscure films of each decade, decades
// ordered chronologically.
func groupByDecade(scored []scoredFilm) []models.DecadeGroup {
	byDecade := make(map[int][]scoredFilm)
	for _, s := range scored {
		y := s.film.Record.Year
		if y == 0 {
			continue
		}
		d := (y / 10) * 10
		byDecade[d] = append(byDecade[d], s)
	}
	if len(byDecade) == 0 {
		return nil
	}

	decades := make([]int, 0, len(byDecade))
	for d := range byDecade {
		decades = append(decades, d)
	}
	sort.Ints(decades)

	groups := make([]models.DecadeGroup, 0, len(decades))
	for _, d := range decades {
		group := byDecade[d]
		sort.SliceStable(group, func(i, j int) bool { return group[i].score > group[j].score })
		if len(group) > filmsPerDecade {
			group = group[:filmsPerDecade]
		}
		summaries := make([]models.FilmSummary, 0, len(group))
		for _, s := range group {
			summaries = append(summaries, summarize(s))
		}
		groups = append(groups, models.DecadeGroup{Decade: decadeLabel(d), Films: summaries})
	}
	return groups
}

func summarize(s scoredFilm) models.FilmSummary {
	r := s.film.Record
	summary := models.FilmSummary{
		Title:          r.Title,
		Year:           r.Year,
		Director:       r.Director,
		WatchCount:     r.WatchCount,
		PosterRef:      r.PosterRef,
		ObscurityScore: round1(s.score),
	}
	if r.Popularity != nil {
		p := round1(*r.Popularity)
		summary.Popularity = &p
	}
	return summary
}

// moodAnalysis tallies genre votes into mood categories. A genre mapped
// to several categories votes once into each; normalization over the
// total vote count brings the shares back to a 100 sum.
func (e *Engine) moodAnalysis(films []models.ResolvedFilm) []models.MoodBucket {
	votes := make([]int, len(e.moods))
	total := 0
	for _, f := range films {
		for _, g := range f.Record.Genres {
			for _, i := range e.genreMoods[g] {
				votes[i]++
				total++
			}
		}
	}
	if total == 0 {
		return nil
	}

	buckets := make([]models.MoodBucket, 0, len(e.moods))
	for i, m := range e.moods {
		if votes[i] == 0 {
			continue
		}
		buckets = append(buckets, models.MoodBucket{
			Mood:    m.Name,
			Percent: round1(float64(votes[i]) / float64(total) * 100),
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Percent > buckets[j].Percent
	})
	return buckets
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
