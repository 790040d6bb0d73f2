// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/letterboxd"
	"github.com/tomtom215/obscura/internal/logging"
	"github.com/tomtom215/obscura/internal/metrics"
	"github.com/tomtom215/obscura/internal/models"
	"github.com/tomtom215/obscura/internal/obscurity"
	"github.com/tomtom215/obscura/internal/resolve"
)

var (
	// ErrProfileNotFound means the profile does not exist or is private.
	// The only error that aborts the whole pipeline.
	ErrProfileNotFound = errors.New("profile not found or private")

	// ErrEmptyProfile means the profile exists but has no watched films.
	// Returned alongside a valid zero-film result so callers can surface
	// it as an empty response rather than a failure.
	ErrEmptyProfile = errors.New("profile has no watched films")

	// ErrUpstreamUnavailable means the profile listing itself could not
	// be fetched at all.
	ErrUpstreamUnavailable = errors.New("upstream source unavailable")
)

// degradedWarning is attached to results when most live resolutions
// failed, so the score was computed mostly from cache.
const degradedWarning = "degraded: upstream metadata sources unavailable"

// Analyzer coordinates one analysis request: fetch the watched list,
// resolve it against the metadata store, score the resolved set.
type Analyzer struct {
	lb       letterboxd.ClientInterface
	resolver *resolve.Resolver
	engine   *obscurity.Engine
	maxPages int
	deadline time.Duration
}

// New creates an Analyzer.
func New(lb letterboxd.ClientInterface, resolver *resolve.Resolver, engine *obscurity.Engine, cfg *config.Config) *Analyzer {
	return &Analyzer{
		lb:       lb,
		resolver: resolver,
		engine:   engine,
		maxPages: cfg.Letterboxd.MaxPages,
		deadline: cfg.Pipeline.Deadline,
	}
}

// Analyze runs the full pipeline for one username. The pipeline runs
// under a soft deadline: once the watched list is retrieved, expiry
// degrades remaining resolutions to unresolved instead of failing, and a
// best-effort result is always returned.
//
// ErrEmptyProfile is returned together with a valid zero-film result.
func (a *Analyzer) Analyze(ctx context.Context, username string) (*models.AnalysisResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	entries, err := a.fetchWatched(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileNotFound):
			metrics.RecordAnalysis("profile_not_found", 0, time.Since(start))
		default:
			metrics.RecordAnalysis("upstream_unavailable", 0, time.Since(start))
		}
		return nil, err
	}

	if len(entries) == 0 {
		metrics.RecordAnalysis("empty_profile", 0, time.Since(start))
		result := a.engine.Score(nil)
		result.Username = username
		return result, ErrEmptyProfile
	}

	res := a.resolver.Resolve(ctx, entries)

	result := a.engine.Score(res.Films)
	result.Username = username
	if res.LiveAttempts > 0 && res.LiveFailures*2 > res.LiveAttempts {
		result.Warning = degradedWarning
		logging.Ctx(ctx).Warn().
			Str("username", username).
			Int("live_attempts", res.LiveAttempts).
			Int("live_failures", res.LiveFailures).
			Msg("analysis degraded: most live resolutions failed")
	}

	metrics.RecordAnalysis("success", result.TotalFilms, time.Since(start))
	logging.Ctx(ctx).Info().
		Str("username", username).
		Int("total_films", result.TotalFilms).
		Int("resolved_films", result.ResolvedFilms).
		Float64("score", result.ObscurityScore).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	return result, nil
}

// fetchWatched paginates the watched-films listing. Pagination is
// sequential: each page's continuation depends on the previous page
// being non-empty. Page errors after the first are non-fatal; partial
// results are returned because most-recent pages come first.
func (a *Analyzer) fetchWatched(ctx context.Context, username string) ([]models.WatchedEntry, error) {
	var entries []models.WatchedEntry

	for page := 1; page <= a.maxPages; page++ {
		pageEntries, err := a.lb.FetchWatchedPage(ctx, username, page)
		if err != nil {
			if page == 1 {
				if errors.Is(err, letterboxd.ErrNotFound) {
					return nil, ErrProfileNotFound
				}
				return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
			}
			logging.CtxErr(ctx, err).
				Str("username", username).
				Int("page", page).
				Msg("pagination stopped early")
			break
		}
		if len(pageEntries) == 0 {
			break
		}
		entries = append(entries, pageEntries...)
	}

	return entries, nil
}
