// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/metrics"
)

// ErrNoMatch is returned when TMDB has no result for a title search, even
// after relaxing the year constraint.
var ErrNoMatch = errors.New("tmdb: no matching film")

// SearchResult is one entry from TMDB's /search/movie response.
type SearchResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	VoteCount   int     `json:"vote_count"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int   `json:"genre_ids"`
	PosterPath  string  `json:"poster_path"`
}

// MovieDetail is TMDB's /movie/{id} response with credits appended.
type MovieDetail struct {
	ID                  int          `json:"id"`
	Title               string       `json:"title"`
	ReleaseDate         string       `json:"release_date"`
	Popularity          float64      `json:"popularity"`
	VoteCount           int          `json:"vote_count"`
	VoteAverage         float64      `json:"vote_average"`
	PosterPath          string       `json:"poster_path"`
	Genres              []NamedRef   `json:"genres"`
	ProductionCountries []CountryRef `json:"production_countries"`
	Credits             Credits      `json:"credits"`
}

// NamedRef is TMDB's {id, name} pair used for genres.
type NamedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CountryRef is TMDB's production country entry.
type CountryRef struct {
	ISO  string `json:"iso_3166_1"`
	Name string `json:"name"`
}

// Credits holds the crew list from append_to_response=credits.
type Credits struct {
	Crew []CrewMember `json:"crew"`
}

// CrewMember is one crew credit.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Director returns the first credited director, or "".
func (d *MovieDetail) Director() string {
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			return c.Name
		}
	}
	return ""
}

// ClientInterface defines the TMDB operations the resolver consumes.
type ClientInterface interface {
	// FindFilm searches for a film and returns its full detail. The
	// search is tried with the year constraint first, then without.
	FindFilm(ctx context.Context, title string, year int) (*MovieDetail, error)
}

// Client is a minimal TMDB v3 API client covering movie search and
// detail lookup. API key authentication via query parameter.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a TMDB client from configuration.
func NewClient(cfg config.TMDBConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// getJSON performs a GET and decodes the JSON response into result.
func (c *Client) getJSON(ctx context.Context, reqURL string, result interface{}) error {
	start := time.Now()
	err := c.doGetJSON(ctx, reqURL, result)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordUpstreamRequest("tmdb", outcome, time.Since(start))

	return err
}

func (c *Client) doGetJSON(ctx context.Context, reqURL string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb request failed with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode tmdb response: %w", err)
	}
	return nil
}

// searchMovie queries /search/movie, optionally constrained by year.
func (c *Client) searchMovie(ctx context.Context, title string, year int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", title)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var body struct {
		Results []SearchResult `json:"results"`
	}
	reqURL := fmt.Sprintf("%s/search/movie?%s", c.baseURL, params.Encode())
	if err := c.getJSON(ctx, reqURL, &body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

// movieDetail queries /movie/{id} with credits appended.
func (c *Client) movieDetail(ctx context.Context, id int) (*MovieDetail, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("append_to_response", "credits")

	var detail MovieDetail
	reqURL := fmt.Sprintf("%s/movie/%d?%s", c.baseURL, id, params.Encode())
	if err := c.getJSON(ctx, reqURL, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindFilm searches for a film by title and year and returns its detail.
// If the year-constrained search comes up empty the search is retried
// without the year; the first result is taken as the best match.
func (c *Client) FindFilm(ctx context.Context, title string, year int) (*MovieDetail, error) {
	results, err := c.searchMovie(ctx, title, year)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 && year > 0 {
		results, err = c.searchMovie(ctx, title, 0)
		if err != nil {
			return nil, err
		}
	}

	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	return c.movieDetail(ctx, results[0].ID)
}
