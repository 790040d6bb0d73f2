// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/obscura/internal/config"
)

const searchResponse = `{
  "results": [
    {"id": 901, "title": "Stalker", "release_date": "1979-05-25",
     "popularity": 21.5, "vote_count": 2500, "vote_average": 8.1,
     "genre_ids": [878, 18], "poster_path": "/stalker.jpg"}
  ]
}`

const emptySearchResponse = `{"results": []}`

const detailResponse = `{
  "id": 901, "title": "Stalker", "release_date": "1979-05-25",
  "popularity": 21.5, "vote_count": 2500, "vote_average": 8.1,
  "poster_path": "/stalker.jpg",
  "genres": [{"id": 878, "name": "Science Fiction"}, {"id": 18, "name": "Drama"}],
  "production_countries": [{"iso_3166_1": "SU", "name": "Soviet Union"}],
  "credits": {"crew": [
    {"name": "Alexander Knyazhinsky", "job": "Director of Photography"},
    {"name": "Andrei Tarkovsky", "job": "Director"}
  ]}
}`

func newTestTMDBClient(baseURL string) *Client {
	return NewClient(config.TMDBConfig{
		Enabled:        true,
		APIKey:         "test-key",
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
	})
}

func TestFindFilm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("missing api_key in %q", r.URL.String())
		}
		switch r.URL.Path {
		case "/search/movie":
			if got := r.URL.Query().Get("year"); got != "1979" {
				t.Errorf("year = %q, want 1979", got)
			}
			_, _ = w.Write([]byte(searchResponse))
		case "/movie/901":
			if got := r.URL.Query().Get("append_to_response"); got != "credits" {
				t.Errorf("append_to_response = %q, want credits", got)
			}
			_, _ = w.Write([]byte(detailResponse))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestTMDBClient(srv.URL)
	detail, err := c.FindFilm(context.Background(), "Stalker", 1979)
	if err != nil {
		t.Fatalf("FindFilm() error: %v", err)
	}

	if detail.Director() != "Andrei Tarkovsky" {
		t.Errorf("Director() = %q, want Andrei Tarkovsky", detail.Director())
	}
	if detail.Popularity != 21.5 {
		t.Errorf("Popularity = %v, want 21.5", detail.Popularity)
	}
	if len(detail.Genres) != 2 || detail.Genres[0].Name != "Science Fiction" {
		t.Errorf("Genres = %v", detail.Genres)
	}
	if len(detail.ProductionCountries) != 1 || detail.ProductionCountries[0].Name != "Soviet Union" {
		t.Errorf("ProductionCountries = %v", detail.ProductionCountries)
	}
}

func TestFindFilmRetriesWithoutYear(t *testing.T) {
	var searches []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			searches = append(searches, r.URL.Query().Get("year"))
			if r.URL.Query().Get("year") != "" {
				_, _ = w.Write([]byte(emptySearchResponse))
				return
			}
			_, _ = w.Write([]byte(searchResponse))
		case "/movie/901":
			_, _ = w.Write([]byte(detailResponse))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestTMDBClient(srv.URL)
	detail, err := c.FindFilm(context.Background(), "Stalker", 1980)
	if err != nil {
		t.Fatalf("FindFilm() error: %v", err)
	}
	if detail.Title != "Stalker" {
		t.Errorf("Title = %q, want Stalker", detail.Title)
	}
	if len(searches) != 2 || searches[0] != "1980" || searches[1] != "" {
		t.Errorf("search years = %v, want [1980 \"\"]", searches)
	}
}

func TestFindFilmNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(emptySearchResponse))
	}))
	defer srv.Close()

	c := newTestTMDBClient(srv.URL)
	_, err := c.FindFilm(context.Background(), "Definitely Not A Film", 2020)
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("error = %v, want ErrNoMatch", err)
	}
}

func TestFindFilmServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestTMDBClient(srv.URL)
	_, err := c.FindFilm(context.Background(), "Stalker", 1979)
	if err == nil {
		t.Fatal("expected error from 500 response")
	}
}

// breakerTestClient fails a fixed number of times then succeeds.
type breakerTestClient struct {
	failures int
	calls    int
}

func (c *breakerTestClient) FindFilm(ctx context.Context, title string, year int) (*MovieDetail, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, errors.New("tmdb down")
	}
	return &MovieDetail{ID: 1, Title: title}, nil
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	cbc := newCircuitBreakerClient(&breakerTestClient{})
	detail, err := cbc.FindFilm(context.Background(), "Stalker", 1979)
	if err != nil {
		t.Fatalf("FindFilm() error: %v", err)
	}
	if detail.Title != "Stalker" {
		t.Errorf("Title = %q, want Stalker", detail.Title)
	}
}

func TestCircuitBreakerPassesThroughNoMatch(t *testing.T) {
	cbc := newCircuitBreakerClient(&noMatchClient{})
	// ErrNoMatch flows through untouched and never trips the breaker
	for i := 0; i < 20; i++ {
		_, err := cbc.FindFilm(context.Background(), "Nothing", 2000)
		if !errors.Is(err, ErrNoMatch) {
			t.Fatalf("call %d: error = %v, want ErrNoMatch", i, err)
		}
	}
}

type noMatchClient struct{}

func (noMatchClient) FindFilm(ctx context.Context, title string, year int) (*MovieDetail, error) {
	return nil, ErrNoMatch
}
