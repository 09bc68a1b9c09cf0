// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// memoryDSN opens a throwaway in-memory database. Extension autoloading
// is disabled so a read never reaches the network.
const memoryDSN = ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false"

// csvRow is one record of a CSV read through DuckDB. Every value is read
// as VARCHAR; empty fields arrive as NULL.
type csvRow struct {
	index  map[string]int
	values []sql.NullString
}

// get returns the trimmed value of the first present column among names.
func (r csvRow) get(names ...string) string {
	for _, name := range names {
		if i, ok := r.index[name]; ok {
			if !r.values[i].Valid {
				return ""
			}
			return strings.TrimSpace(r.values[i].String)
		}
	}
	return ""
}

// requireColumns checks that every group has at least one present column.
func requireColumns(path string, index map[string]int, groups ...[]string) error {
	for _, group := range groups {
		found := false
		for _, name := range group {
			if _, ok := index[name]; ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s: missing column %s", recommend.ErrConfiguration, path, strings.Join(group, " or "))
		}
	}
	return nil
}

// forEachCSVRow streams the records of the CSV at path. check runs once
// with the header before any record.
func forEachCSVRow(ctx context.Context, path string, check func(index map[string]int) error, fn func(row csvRow) error) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	db, err := sql.Open("duckdb", memoryDSN)
	if err != nil {
		return fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer closeQuietly(db)

	query := fmt.Sprintf("SELECT * FROM read_csv(%s, header = true, all_varchar = true)", quoteLiteral(path))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	defer closeQuietly(rows)

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("read %s columns: %w", path, err)
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		name := strings.ToLower(strings.TrimSpace(c))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	if err := check(index); err != nil {
		return err
	}

	values := make([]sql.NullString, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan %s: %w", path, err)
		}
		if err := fn(csvRow{index: index, values: values}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		logging.Debug().Err(err).Msg("Close failed")
	}
}
