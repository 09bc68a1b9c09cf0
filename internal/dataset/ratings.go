// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Ratings file formats.
const (
	FormatAuto = "auto"
	FormatDat  = "dat"
	FormatCSV  = "csv"
)

var (
	colUserID    = []string{"user_id", "userid"}
	colRatingsID = []string{"item_id", "movie_id", "movieid"}
	colRating    = []string{"rating"}
	colTimestamp = []string{"timestamp"}
	colTitleYear = []string{"title_year", "title"}
)

// DetectFormat resolves FormatAuto by file extension.
func DetectFormat(path, format string) (string, error) {
	switch format {
	case FormatDat, FormatCSV:
		return format, nil
	case "", FormatAuto:
	default:
		return "", fmt.Errorf("%w: unknown ratings format %q", recommend.ErrConfiguration, format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dat":
		return FormatDat, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: cannot infer format of %s", recommend.ErrConfiguration, path)
}

// LoadRatings reads ratings in the given format.
func LoadRatings(ctx context.Context, path, format string) ([]recommend.Rating, error) {
	format, err := DetectFormat(path, format)
	if err != nil {
		return nil, err
	}
	if format == FormatDat {
		return LoadRatingsDat(ctx, path)
	}
	return LoadRatingsCSV(ctx, path)
}

// LoadRatingsCSV reads a CSV with user_id, item_id (or movie_id) and rating
// columns. timestamp is optional.
func LoadRatingsCSV(ctx context.Context, path string) ([]recommend.Rating, error) {
	var out []recommend.Rating
	check := func(index map[string]int) error {
		return requireColumns(path, index, colUserID, colRatingsID, colRating)
	}
	err := forEachCSVRow(ctx, path, check, func(row csvRow) error {
		r, err := parseRating(row.get(colUserID...), row.get(colRatingsID...), row.get(colRating...), row.get(colTimestamp...))
		if err != nil {
			return fmt.Errorf("%w: %s: row %d: %v", recommend.ErrConfiguration, path, len(out)+1, err)
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadCatalog reads the ratings-side catalog. ".dat" files use the
// MovieLens layout; anything else is read as CSV with movie_id,
// title_year (or title) and an optional genres column.
func LoadCatalog(ctx context.Context, path string) ([]recommend.CatalogEntry, error) {
	if strings.EqualFold(filepath.Ext(path), ".dat") {
		return LoadCatalogDat(ctx, path)
	}

	var out []recommend.CatalogEntry
	check := func(index map[string]int) error {
		return requireColumns(path, index, colRatingsID, colTitleYear)
	}
	err := forEachCSVRow(ctx, path, check, func(row csvRow) error {
		id := wholeNumber(row.get(colRatingsID...))
		if id == "" {
			return fmt.Errorf("%w: %s: row %d has no item id", recommend.ErrConfiguration, path, len(out)+1)
		}
		out = append(out, recommend.CatalogEntry{
			ItemID:    id,
			TitleYear: row.get(colTitleYear...),
			Genres:    ParseList(row.get("genres")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
