// Obscura - Letterboxd Obscurity Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obscura

package letterboxd

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tomtom215/obscura/internal/models"
)

// Parsing targets Letterboxd's current markup:
//
//   - films pages render each film as a react-component div with
//     data-component-class="LazyPoster" carrying data-item-name ("Title
//     (Year)") and data-item-slug attributes; the user's rating follows as
//     a span with a rated-N class (N = stars doubled)
//   - the CSI stats fragment exposes counters via aria-label text such as
//     "Watched by 6,234,540 members"
//   - the film page links director via /director/ hrefs, genres inside the
//     #tab-genres section, and countries via /films/country/ hrefs

var (
	yearSuffixRe = regexp.MustCompile(`\((\d{4})\)$`)
	ratedClassRe = regexp.MustCompile(`^rated-(\d+)$`)
	watchedByRe  = regexp.MustCompile(`Watched by ([\d,]+)`)
	likedByRe    = regexp.MustCompile(`Liked by ([\d,]+)`)
	appearsInRe  = regexp.MustCompile(`Appears in ([\d,]+)`)
)

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// nodeText concatenates the text content of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// walkNodes visits every node in document order.
func walkNodes(root *html.Node, visit func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		visit(n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

// parseFilmsPage extracts watched entries from a profile films page in
// listing order. Rating spans follow their poster component in document
// order, so each rated-N class is attached to the most recent entry.
func parseFilmsPage(body []byte) ([]models.WatchedEntry, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse films page: %w", err)
	}

	var entries []models.WatchedEntry

	walkNodes(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}

		if n.Data == "div" && attr(n, "data-component-class") == "LazyPoster" {
			name := attr(n, "data-item-name")
			slug := attr(n, "data-item-slug")
			if name == "" || slug == "" {
				return
			}

			entry := models.WatchedEntry{Title: name, Slug: slug}
			if m := yearSuffixRe.FindStringSubmatch(name); m != nil {
				entry.Year, _ = strconv.Atoi(m[1])
				entry.Title = strings.TrimSpace(name[:len(name)-len(m[0])])
			}
			entries = append(entries, entry)
			return
		}

		// rated-6 means 3 stars (class value is stars doubled)
		if n.Data == "span" && hasClass(n, "rating") && len(entries) > 0 {
			last := &entries[len(entries)-1]
			if last.Rating != nil {
				return
			}
			for _, c := range strings.Fields(attr(n, "class")) {
				if m := ratedClassRe.FindStringSubmatch(c); m != nil {
					if v, err := strconv.Atoi(m[1]); err == nil {
						rating := float64(v) / 2.0
						last.Rating = &rating
					}
				}
			}
		}
	})

	return entries, nil
}

// parseCount parses a grouped count like "6,234,540".
func parseCount(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ariaCount extracts a counter from an aria-label using the given pattern.
// The label uses non-breaking spaces between number and noun.
func ariaCount(label string, re *regexp.Regexp) (int64, bool) {
	label = strings.ReplaceAll(label, " ", " ")
	m := re.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	return parseCount(m[1])
}

// parseStatsFragment extracts watch, like and list counts from the CSI
// stats endpoint response.
func parseStatsFragment(body []byte) (*FilmStats, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse stats fragment: %w", err)
	}

	stats := &FilmStats{}

	walkNodes(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || !hasClass(n, "production-statistic") {
			return
		}

		label := attr(n, "aria-label")
		switch {
		case hasClass(n, "-watches"):
			if v, ok := ariaCount(label, watchedByRe); ok {
				stats.Watches = v
			}
		case hasClass(n, "-likes"):
			if v, ok := ariaCount(label, likedByRe); ok {
				stats.Likes = v
			}
		case hasClass(n, "-lists"):
			if v, ok := ariaCount(label, appearsInRe); ok {
				stats.Lists = v
			}
		}
	})

	return stats, nil
}

// parseFilmPage extracts director, genres, countries and the community
// rating from a film's main page.
func parseFilmPage(body []byte) (*FilmDetail, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse film page: %w", err)
	}

	detail := &FilmDetail{}

	walkNodes(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}

		switch n.Data {
		case "a":
			href := attr(n, "href")
			if detail.Director == "" && strings.Contains(href, "/director/") {
				detail.Director = nodeText(n)
			}
			if strings.Contains(href, "/films/country/") {
				if country := nodeText(n); country != "" {
					detail.Countries = append(detail.Countries, country)
				}
			}

		case "div", "section":
			if attr(n, "id") == "tab-genres" {
				detail.Genres = collectGenres(n)
			}

		case "meta":
			if attr(n, "name") == "twitter:data2" {
				content := attr(n, "content")
				if fields := strings.Fields(content); len(fields) > 0 {
					if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
						detail.Rating = &v
					}
				}
			}
		}
	})

	return detail, nil
}

// collectGenres gathers up to five genre links from the genres tab,
// skipping the "Show All" expander.
func collectGenres(tab *html.Node) []string {
	var genres []string
	walkNodes(tab, func(n *html.Node) {
		if len(genres) >= 5 {
			return
		}
		if n.Type != html.ElementNode || n.Data != "a" || !hasClass(n, "text-slug") {
			return
		}
		text := nodeText(n)
		if text == "" || strings.HasPrefix(text, "Show") {
			return
		}
		genres = append(genres, text)
	})
	return genres
}
