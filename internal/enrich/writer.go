// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package enrich

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tomtom215/reelmatch/internal/dataset"
)

// WriteFile writes records to path through a temporary file in the same
// directory, renamed into place on success.
func WriteFile(path string, records []Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".enriched-*.csv")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := Write(tmp, records); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Write encodes records as CSV with the dataset.EnrichedColumns header.
func Write(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dataset.EnrichedColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].row()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// row follows dataset.EnrichedColumns.
func (r *Record) row() []string {
	m := &r.Movie
	tmdbID := ""
	if m.TMDBID > 0 {
		tmdbID = strconv.FormatInt(m.TMDBID, 10)
	}
	return []string{
		m.ItemID,
		tmdbID,
		m.Title,
		r.OriginalTitle,
		m.Year,
		strings.Join(m.Genres, "|"),
		m.Overview,
		m.Keywords,
		m.Director,
		strings.Join(m.TopActors, ", "),
		m.ProductionCompanies,
		m.ProductionCountries,
		formatNull(m.VoteAverage),
		formatNull(m.VoteCount),
		formatNull(m.Popularity),
		formatNull(m.Runtime),
		r.OriginalLanguage,
	}
}

func formatNull(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
