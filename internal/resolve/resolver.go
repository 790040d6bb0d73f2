// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package resolve

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/obscura/internal/letterboxd"
	"github.com/tomtom215/obscura/internal/logging"
	"github.com/tomtom215/obscura/internal/metrics"
	"github.com/tomtom215/obscura/internal/models"
	"github.com/tomtom215/obscura/internal/store"
	"github.com/tomtom215/obscura/internal/tmdb"
)

// Result is the outcome of resolving a watched list. Films preserve the
// input order. LiveAttempts and LiveFailures feed the degraded-analysis
// warning: a high failure ratio means upstream sources are down, not that
// the user watches films nobody has heard of.
type Result struct {
	Films        []models.ResolvedFilm
	LiveAttempts int
	LiveFailures int
}

// Resolver turns watched entries into resolved films: cache-first against
// the metadata store, then live resolution against Letterboxd with TMDB
// filling the gaps, bounded by a per-request budget of new films.
//
// Thread Safety: Safe for concurrent use; each Resolve call runs its own
// bounded worker set.
type Resolver struct {
	store       store.FilmStore
	lb          letterboxd.ClientInterface
	tmdb        tmdb.ClientInterface // nil when the fallback source is disabled
	concurrency int
	maxNewFilms int
}

// New creates a Resolver. tmdbClient may be nil to disable the fallback
// source entirely.
func New(filmStore store.FilmStore, lb letterboxd.ClientInterface, tmdbClient tmdb.ClientInterface, concurrency, maxNewFilms int) *Resolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Resolver{
		store:       filmStore,
		lb:          lb,
		tmdb:        tmdbClient,
		concurrency: concurrency,
		maxNewFilms: maxNewFilms,
	}
}

// Resolve resolves every entry, in input order. Per-film failures are
// isolated: a film that cannot be resolved becomes an unresolved record
// rather than failing the batch. Context expiry degrades rather than
// aborts: entries not yet scheduled fall back to unresolved for this
// request, while completed resolutions (and their upserts) are kept, so
// the caller always gets a best-effort result.
func (r *Resolver) Resolve(ctx context.Context, entries []models.WatchedEntry) *Result {
	films := make([]models.ResolvedFilm, len(entries))

	// budget tracks live resolutions spent against maxNewFilms;
	// attempts and failures feed the degraded-analysis warning.
	var budget, attempts, failures atomic.Int64
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, entry := range entries {
		if ctx.Err() != nil {
			films[i] = models.ResolvedFilm{Entry: entry, Record: models.UnresolvedRecord(entry)}
			continue
		}

		wg.Add(1)
		go func(i int, entry models.WatchedEntry) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			films[i] = models.ResolvedFilm{
				Entry:  entry,
				Record: r.resolveOne(ctx, entry, &budget, &attempts, &failures),
			}
		}(i, entry)
	}

	wg.Wait()

	return &Result{
		Films:        films,
		LiveAttempts: int(attempts.Load()),
		LiveFailures: int(failures.Load()),
	}
}

// resolveOne resolves a single entry: cache hit, then live resolution if
// the budget allows, then stale-or-unresolved.
func (r *Resolver) resolveOne(ctx context.Context, entry models.WatchedEntry, budget, attempts, failures *atomic.Int64) models.FilmRecord {
	id := entry.Identity()

	cached, err := r.store.Get(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logging.CtxErr(ctx, err).Str("film", id.Key()).Msg("store lookup failed")
	}
	if cached != nil && !cached.Stale() {
		metrics.RecordResolution("cached")
		return *cached
	}

	// Reserve a slot in the per-request budget. maxNewFilms 0 means
	// cache-only operation.
	if budget.Add(1) > int64(r.maxNewFilms) {
		budget.Add(-1)
		metrics.RecordResolution("skipped")
		if cached != nil {
			return *cached // stale beats nothing
		}
		// Not persisted: budget exhaustion says nothing about the film.
		return models.UnresolvedRecord(entry)
	}

	attempts.Add(1)
	start := time.Now()
	record, upstreamErr := r.resolveLive(ctx, entry, cached)
	metrics.ResolutionDuration.Observe(time.Since(start).Seconds())

	if upstreamErr != nil {
		if ctx.Err() != nil {
			// The pipeline deadline expired mid-fetch. That says nothing
			// about upstream health, so it must not feed the degraded
			// warning.
			attempts.Add(-1)
		} else {
			failures.Add(1)
			logging.CtxErr(ctx, upstreamErr).Str("film", id.Key()).Msg("live resolution failed")
		}
		if cached != nil {
			return *cached
		}
		// Transient failure: serve unresolved but do not poison the
		// cache with it.
		metrics.RecordResolution("unresolved")
		return models.UnresolvedRecord(entry)
	}

	metrics.RecordResolution(string(record.Source))
	if err := r.store.Upsert(ctx, &record); err != nil {
		logging.CtxErr(ctx, err).Str("film", id.Key()).Msg("store upsert failed")
	}
	return record
}

// resolveLive resolves against the upstream sources: Letterboxd first,
// TMDB filling whatever gaps remain (primary wins on conflicts). The
// returned error is non-nil only for upstream outages; a film that both
// sources simply don't know is returned as an unresolved record with nil
// error so the miss is recorded. Cached unresolved records are stale, so
// the miss is retried on a later request within that request's budget.
func (r *Resolver) resolveLive(ctx context.Context, entry models.WatchedEntry, cached *models.FilmRecord) (models.FilmRecord, error) {
	record := models.FilmRecord{
		Identity: entry.Identity(),
		Title:    entry.Title,
		Year:     entry.Year,
		Slug:     entry.Slug,
	}
	if cached != nil {
		record = *cached // start from the stale record and fill its gaps
		if record.Slug == "" {
			record.Slug = entry.Slug
		}
	}

	var upstreamDown bool

	if record.Slug != "" {
		if err := r.fillFromLetterboxd(ctx, &record); err != nil {
			if errors.Is(err, letterboxd.ErrUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				upstreamDown = true
			}
			// ErrNotFound falls through to the fallback source.
		}
	}

	gapsRemain := record.WatchCount == nil || len(record.Genres) == 0 || record.Director == "" || len(record.Countries) == 0
	if r.tmdb != nil && gapsRemain {
		if err := r.fillFromTMDB(ctx, &record); err != nil && !errors.Is(err, tmdb.ErrNoMatch) {
			upstreamDown = true
		}
	}

	if record.WatchCount != nil {
		record.Source = models.SourcePrimary
	} else if record.Popularity != nil {
		record.Source = models.SourceFallback
	} else {
		if upstreamDown {
			return record, errors.New("all metadata sources unavailable")
		}
		return models.UnresolvedRecord(entry), nil
	}

	record.ResolvedAt = time.Now().UTC()
	return record, nil
}

// fillFromLetterboxd scrapes the film stats fragment and the film page,
// filling empty fields only.
func (r *Resolver) fillFromLetterboxd(ctx context.Context, record *models.FilmRecord) error {
	stats, err := r.lb.FetchFilmStats(ctx, record.Slug)
	if err != nil {
		return err
	}
	if stats.Watches > 0 {
		watches := stats.Watches
		record.WatchCount = &watches
	}

	detail, err := r.lb.FetchFilmDetail(ctx, record.Slug)
	if err != nil {
		// Stats alone are enough for scoring; keep them.
		if record.WatchCount != nil {
			return nil
		}
		return err
	}

	if record.Director == "" {
		record.Director = detail.Director
	}
	if len(record.Genres) == 0 {
		record.Genres = detail.Genres
	}
	if len(record.Countries) == 0 {
		record.Countries = detail.Countries
	}
	return nil
}

// fillFromTMDB fills remaining gaps from the TMDB fallback source.
// Primary data always wins; fallback only lands in empty fields.
func (r *Resolver) fillFromTMDB(ctx context.Context, record *models.FilmRecord) error {
	detail, err := r.tmdb.FindFilm(ctx, record.Title, record.Year)
	if err != nil {
		return err
	}

	if record.Popularity == nil {
		popularity := detail.Popularity
		record.Popularity = &popularity
	}
	if record.VoteCount == nil {
		votes := detail.VoteCount
		record.VoteCount = &votes
	}
	if record.Director == "" {
		record.Director = detail.Director()
	}
	if len(record.Genres) == 0 {
		for _, g := range detail.Genres {
			record.Genres = append(record.Genres, g.Name)
		}
	}
	if len(record.Countries) == 0 {
		for _, c := range detail.ProductionCountries {
			record.Countries = append(record.Countries, c.Name)
		}
	}
	if record.PosterRef == "" {
		record.PosterRef = detail.PosterPath
	}
	return nil
}
