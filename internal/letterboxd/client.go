// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/obscura/internal/config"
	"github.com/tomtom215/obscura/internal/metrics"
	"github.com/tomtom215/obscura/internal/models"
)

// Sentinel errors for callers to branch on.
var (
	// ErrNotFound is returned for HTTP 404. On page 1 of a profile this
	// means the user does not exist; on later pages it means the listing
	// ended.
	ErrNotFound = errors.New("letterboxd resource not found")

	// ErrUnavailable is returned when Letterboxd keeps rejecting or
	// failing requests after retries are exhausted.
	ErrUnavailable = errors.New("letterboxd unavailable")
)

// maxErrorBodySize limits the maximum amount of response body read for error reporting
// This prevents unbounded memory allocation when reading large error responses
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads the response body for error reporting (max 64KB)
// Returns the body content or a placeholder message if reading fails
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// ClientInterface defines the Letterboxd scrape operations used by the
// profile fetcher and the film resolver. Implemented by Client for
// production and by mocks in tests.
//
// All methods accept a context for cancellation and are safe for
// concurrent use.
type ClientInterface interface {
	// FetchWatchedPage returns one page of a user's watched films.
	// A 404 response maps to ErrNotFound.
	FetchWatchedPage(ctx context.Context, username string, page int) ([]models.WatchedEntry, error)

	// FetchFilmStats returns the watch statistics for a film slug from
	// the CSI stats endpoint.
	FetchFilmStats(ctx context.Context, slug string) (*FilmStats, error)

	// FetchFilmDetail returns director, genres and countries from the
	// film's main page.
	FetchFilmDetail(ctx context.Context, slug string) (*FilmDetail, error)
}

// FilmStats holds the counters scraped from the film stats endpoint.
type FilmStats struct {
	Watches int64
	Likes   int64
	Lists   int64
}

// FilmDetail holds metadata scraped from a film's main page.
type FilmDetail struct {
	Director  string
	Genres    []string
	Countries []string
	Rating    *float64 // community average, 0.5-5.0
}

// Client scrapes Letterboxd's public pages. Letterboxd has no public API,
// so this client behaves like a polite browser: a shared token-bucket
// rate limiter in front of every request, browser-like headers, and
// exponential backoff on HTTP 429 (1s, 2s, 4s, 8s, 16s) honoring
// Retry-After.
//
// Thread Safety: Safe for concurrent use. Each request creates its own
// HTTP request; the limiter serializes admission.
type Client struct {
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a Letterboxd scrape client from configuration.
func NewClient(cfg config.LetterboxdConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxRetries:     5,
		retryBaseDelay: 1 * time.Second,
	}
}

// browser-like headers; Letterboxd serves different markup to obvious bots
func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// get performs a rate-limited GET with automatic 429 backoff, returning
// the response body. 404 maps to ErrNotFound; other non-200 statuses and
// exhausted retries map to ErrUnavailable.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	start := time.Now()
	body, err := c.doRequestWithRateLimit(ctx, reqURL)

	result := "success"
	switch {
	case errors.Is(err, ErrUnavailable):
		result = "rate_limited"
	case err != nil:
		result = "error"
	}
	metrics.RecordUpstreamRequest("letterboxd", result, time.Since(start))

	return body, err
}

func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) ([]byte, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		setHeaders(req)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read response body: %w", err)
			}
			return body, nil

		case http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, ErrNotFound

		case http.StatusTooManyRequests:
			_ = resp.Body.Close() // will retry anyway

			if attempt == c.maxRetries {
				return nil, fmt.Errorf("%w: rate limit exceeded after %d retries (HTTP 429)", ErrUnavailable, c.maxRetries)
			}

			// Exponential backoff delay: 1s, 2s, 4s, 8s, 16s
			delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))

			// Check for Retry-After header (RFC 6585)
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
					delay = seconds
				}
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

		default:
			errBody := readBodyForError(resp.Body)
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(errBody))
		}
	}

	return nil, ErrUnavailable
}

// FetchWatchedPage returns one page of a user's watched films, preserving
// the page's listing order.
func (c *Client) FetchWatchedPage(ctx context.Context, username string, page int) ([]models.WatchedEntry, error) {
	reqURL := fmt.Sprintf("%s/%s/films/page/%d/", c.baseURL, url.PathEscape(username), page)

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	return parseFilmsPage(body)
}

// FetchFilmStats returns the watch counters for a film. The stats live on
// a separate CSI fragment endpoint, not the film page itself.
func (c *Client) FetchFilmStats(ctx context.Context, slug string) (*FilmStats, error) {
	reqURL := fmt.Sprintf("%s/csi/film/%s/stats/", c.baseURL, url.PathEscape(slug))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	return parseStatsFragment(body)
}

// FetchFilmDetail returns director, genres and countries from the film's
// main page.
func (c *Client) FetchFilmDetail(ctx context.Context, slug string) (*FilmDetail, error) {
	reqURL := fmt.Sprintf("%s/film/%s/", c.baseURL, url.PathEscape(slug))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	return parseFilmPage(body)
}
