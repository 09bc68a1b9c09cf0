// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Enriched movie table columns. The id column may be named either way.
var (
	colItemID = []string{"item_id", "movie_id"}
	colTitle  = []string{"title"}
)

// EnrichedColumns is the header written by the enricher and read by
// LoadMovies.
var EnrichedColumns = []string{
	"item_id", "tmdb_id", "title", "original_title", "year", "genres", "overview",
	"keywords", "director", "top_actors", "production_companies", "production_countries",
	"vote_average", "vote_count", "popularity", "runtime", "original_language",
}

// LoadMovies reads the enriched movie CSV at path. Row order is kept.
// Besides the id and title, every column in featureColumns must be present;
// a missing one wraps recommend.ErrConfiguration. Other columns may be
// absent and missing numeric values stay invalid.
func LoadMovies(ctx context.Context, path string, featureColumns ...string) ([]recommend.Movie, error) {
	var movies []recommend.Movie

	groups := make([][]string, 0, len(featureColumns)+2)
	groups = append(groups, colItemID, colTitle)
	for _, name := range featureColumns {
		groups = append(groups, []string{name})
	}
	check := func(index map[string]int) error {
		return requireColumns(path, index, groups...)
	}
	err := forEachCSVRow(ctx, path, check, func(row csvRow) error {
		m := recommend.Movie{
			ItemID:              wholeNumber(row.get(colItemID...)),
			Title:               row.get("title"),
			Year:                wholeNumber(row.get("year")),
			Genres:              ParseList(row.get("genres")),
			Overview:            row.get("overview"),
			Keywords:            row.get("keywords"),
			Director:            row.get("director"),
			TopActors:           ParseList(row.get("top_actors")),
			ProductionCompanies: row.get("production_companies"),
			ProductionCountries: row.get("production_countries"),
			VoteAverage:         parseNullFloat(row.get("vote_average")),
			VoteCount:           parseNullFloat(row.get("vote_count")),
			Popularity:          parseNullFloat(row.get("popularity")),
			Runtime:             parseNullFloat(row.get("runtime")),
		}
		if len(m.TopActors) > recommend.MaxTopActors {
			m.TopActors = m.TopActors[:recommend.MaxTopActors]
		}
		if id := parseNullFloat(row.get("tmdb_id")); id.Valid {
			m.TMDBID = int64(id.Float64)
		}
		if m.ItemID == "" {
			return fmt.Errorf("%w: %s: row %d has no item id", recommend.ErrConfiguration, path, len(movies)+1)
		}
		movies = append(movies, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// ParseList splits a list field. Three forms are accepted:
//
//	Action|Crime
//	Action, Crime
//	['Action', 'Crime']
//
// Empty elements are dropped.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	sep := ","
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		raw = raw[1 : len(raw)-1]
	} else if strings.Contains(raw, "|") {
		sep = "|"
	}

	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseNullFloat(s string) sql.NullFloat64 {
	if s == "" {
		return sql.NullFloat64{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// wholeNumber turns "1995.0" into "1995". Anything else is returned as-is.
func wholeNumber(s string) string {
	if !strings.HasSuffix(s, ".0") {
		return s
	}
	head := strings.TrimSuffix(s, ".0")
	if _, err := strconv.ParseInt(head, 10, 64); err != nil {
		return s
	}
	return head
}

// CatalogFromMovies derives a "Title (Year)" catalog from the movie table,
// for deployments without a separate ratings catalog.
func CatalogFromMovies(movies []recommend.Movie) []recommend.CatalogEntry {
	out := make([]recommend.CatalogEntry, len(movies))
	for i := range movies {
		m := &movies[i]
		title := m.Title
		if m.Year != "" {
			title = fmt.Sprintf("%s (%s)", m.Title, m.Year)
		}
		out[i] = recommend.CatalogEntry{ItemID: m.ItemID, TitleYear: title, Genres: m.Genres}
	}
	return out
}
