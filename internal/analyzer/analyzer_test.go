// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/letterboxd"
	"github.com/tomtom215/obscura/internal/models"
	"github.com/tomtom215/obscura/internal/obscurity"
	"github.com/tomtom215/obscura/internal/resolve"
	"github.com/tomtom215/obscura/internal/store"
)

// fakeLetterboxd serves watched pages and per-film metadata from fixtures.
type fakeLetterboxd struct {
	pages        map[int][]models.WatchedEntry
	pageErrs     map[int]error
	stats        map[string]*letterboxd.FilmStats
	details      map[string]*letterboxd.FilmDetail
	lastUsername string
	pagesFetched int
}

func (f *fakeLetterboxd) FetchWatchedPage(ctx context.Context, username string, page int) ([]models.WatchedEntry, error) {
	f.lastUsername = username
	f.pagesFetched++
	if err, ok := f.pageErrs[page]; ok {
		return nil, err
	}
	return f.pages[page], nil
}

func (f *fakeLetterboxd) FetchFilmStats(ctx context.Context, slug string) (*letterboxd.FilmStats, error) {
	if s, ok := f.stats[slug]; ok {
		return s, nil
	}
	return nil, letterboxd.ErrNotFound
}

func (f *fakeLetterboxd) FetchFilmDetail(ctx context.Context, slug string) (*letterboxd.FilmDetail, error) {
	if d, ok := f.details[slug]; ok {
		return d, nil
	}
	return nil, letterboxd.ErrNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		Letterboxd: config.LetterboxdConfig{MaxPages: 3},
		Pipeline:   config.PipelineConfig{Deadline: 5 * time.Second},
	}
}

func newTestAnalyzer(t *testing.T, lb *fakeLetterboxd) *Analyzer {
	t.Helper()
	s, err := store.Open(config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	resolver := resolve.New(s, lb, nil, 4, 100)
	return New(lb, resolver, obscurity.New(nil), testConfig())
}

func watched(title string, year int, slug string) models.WatchedEntry {
	return models.WatchedEntry{Title: title, Year: year, Slug: slug}
}

func TestAnalyzeProfileNotFound(t *testing.T) {
	lb := &fakeLetterboxd{pageErrs: map[int]error{1: letterboxd.ErrNotFound}}
	a := newTestAnalyzer(t, lb)

	_, err := a.Analyze(context.Background(), "nobody")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestAnalyzeUpstreamUnavailable(t *testing.T) {
	lb := &fakeLetterboxd{pageErrs: map[int]error{1: letterboxd.ErrUnavailable}}
	a := newTestAnalyzer(t, lb)

	_, err := a.Analyze(context.Background(), "someone")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestAnalyzeEmptyProfile(t *testing.T) {
	lb := &fakeLetterboxd{pages: map[int][]models.WatchedEntry{}}
	a := newTestAnalyzer(t, lb)

	result, err := a.Analyze(context.Background(), "newcomer")
	if !errors.Is(err, ErrEmptyProfile) {
		t.Fatalf("err = %v, want ErrEmptyProfile", err)
	}
	if result == nil {
		t.Fatal("empty profile must still return a zero result")
	}
	if result.TotalFilms != 0 || result.ObscurityScore != 0 {
		t.Errorf("zero result = %+v", result)
	}
	if result.Username != "newcomer" {
		t.Errorf("Username = %q, want newcomer", result.Username)
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	lb := &fakeLetterboxd{
		pages: map[int][]models.WatchedEntry{
			1: {watched("Stalker", 1979, "stalker"), watched("Jaws", 1975, "jaws")},
			2: {watched("Sátántangó", 1994, "satantango")},
		},
		stats: map[string]*letterboxd.FilmStats{
			"stalker":    {Watches: 1_500_000},
			"jaws":       {Watches: 4_000_000},
			"satantango": {Watches: 90_000},
		},
		details: map[string]*letterboxd.FilmDetail{
			"stalker":    {Director: "Andrei Tarkovsky", Genres: []string{"Science Fiction"}, Countries: []string{"USSR"}},
			"jaws":       {Director: "Steven Spielberg", Genres: []string{"Thriller"}, Countries: []string{"United States of America"}},
			"satantango": {Director: "Béla Tarr", Genres: []string{"Drama"}, Countries: []string{"Hungary"}},
		},
	}
	a := newTestAnalyzer(t, lb)

	result, err := a.Analyze(context.Background(), "Cinephile")
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.Username != "cinephile" {
		t.Errorf("Username = %q, want lowercased", result.Username)
	}
	if lb.lastUsername != "cinephile" {
		t.Errorf("fetched username = %q, want normalized form", lb.lastUsername)
	}
	if result.TotalFilms != 3 || result.ResolvedFilms != 3 {
		t.Errorf("TotalFilms/ResolvedFilms = %d/%d, want 3/3", result.TotalFilms, result.ResolvedFilms)
	}
	if result.ObscurityScore <= 0 || result.ObscurityScore > 100 {
		t.Errorf("score %v out of range", result.ObscurityScore)
	}
	if result.MostObscureFilms[0].Title != "Sátántangó" {
		t.Errorf("most obscure = %q, want Sátántangó", result.MostObscureFilms[0].Title)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning %q", result.Warning)
	}
}

func TestAnalyzeStopsAtMaxPages(t *testing.T) {
	// Every page is non-empty; pagination must stop at the configured cap.
	lb := &fakeLetterboxd{
		pages: map[int][]models.WatchedEntry{
			1: {watched("A", 2001, "")},
			2: {watched("B", 2002, "")},
			3: {watched("C", 2003, "")},
			4: {watched("D", 2004, "")},
		},
	}
	a := newTestAnalyzer(t, lb)

	result, err := a.Analyze(context.Background(), "completionist")
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if lb.pagesFetched != 3 {
		t.Errorf("fetched %d pages, want 3", lb.pagesFetched)
	}
	if result.TotalFilms != 3 {
		t.Errorf("TotalFilms = %d, want 3", result.TotalFilms)
	}
}

func TestAnalyzePartialPagination(t *testing.T) {
	lb := &fakeLetterboxd{
		pages: map[int][]models.WatchedEntry{
			1: {watched("A", 2001, "")},
		},
		pageErrs: map[int]error{2: letterboxd.ErrUnavailable},
	}
	a := newTestAnalyzer(t, lb)

	result, err := a.Analyze(context.Background(), "someone")
	if err != nil {
		t.Fatalf("page errors after the first must not fail the request: %v", err)
	}
	if result.TotalFilms != 1 {
		t.Errorf("TotalFilms = %d, want the partial page 1 result", result.TotalFilms)
	}
}

func TestAnalyzeDegradedWarning(t *testing.T) {
	// Films have slugs but every per-film fetch fails: live resolution
	// degrades and the result carries a warning.
	lb := &fakeLetterboxd{
		pages: map[int][]models.WatchedEntry{
			1: {watched("A", 2001, "a"), watched("B", 2002, "b")},
		},
	}

	s, err := store.Open(config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	resolver := resolve.New(s, &outageLetterboxd{fakeLetterboxd: lb}, nil, 2, 100)
	a := New(lb, resolver, obscurity.New(nil), testConfig())

	result, err := a.Analyze(context.Background(), "unlucky")
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if result.Warning == "" {
		t.Error("expected degraded warning on total upstream failure")
	}
	if result.TotalFilms != 2 {
		t.Errorf("TotalFilms = %d, want 2", result.TotalFilms)
	}
}

// outageLetterboxd fails every per-film fetch with ErrUnavailable while
// leaving profile pagination intact.
type outageLetterboxd struct {
	*fakeLetterboxd
}

func (o *outageLetterboxd) FetchFilmStats(ctx context.Context, slug string) (*letterboxd.FilmStats, error) {
	return nil, letterboxd.ErrUnavailable
}

func (o *outageLetterboxd) FetchFilmDetail(ctx context.Context, slug string) (*letterboxd.FilmDetail, error) {
	return nil, letterboxd.ErrUnavailable
}
