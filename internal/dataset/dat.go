// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// datSeparator splits fields of the MovieLens ".dat" files.
const datSeparator = "::"

// ctxCheckEvery bounds how many lines are read between context checks.
const ctxCheckEvery = 4096

// LoadCatalogDat reads a latin-1 encoded "id::Title (Year)::Genre|Genre" file.
func LoadCatalogDat(ctx context.Context, path string) ([]recommend.CatalogEntry, error) {
	var out []recommend.CatalogEntry
	err := forEachDatLine(ctx, path, 3, func(line int, fields []string) error {
		id := strings.TrimSpace(fields[0])
		if id == "" {
			return fmt.Errorf("%w: %s:%d: empty item id", recommend.ErrConfiguration, path, line)
		}
		out = append(out, recommend.CatalogEntry{
			ItemID:    id,
			TitleYear: strings.TrimSpace(fields[1]),
			Genres:    ParseList(fields[2]),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadRatingsDat reads a "user::item::rating::timestamp" file.
func LoadRatingsDat(ctx context.Context, path string) ([]recommend.Rating, error) {
	var out []recommend.Rating
	err := forEachDatLine(ctx, path, 4, func(line int, fields []string) error {
		r, err := parseRating(fields[0], fields[1], fields[2], fields[3])
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %v", recommend.ErrConfiguration, path, line, err)
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// forEachDatLine decodes path as ISO-8859-1 and calls fn with each
// non-blank line split into exactly want fields.
func forEachDatLine(ctx context.Context, path string, want int, fn func(line int, fields []string) error) error {
	f, err := os.Open(path) //nolint:gosec // operator-supplied dataset path
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer closeQuietly(f)
	return scanDat(ctx, path, f, want, fn)
}

func scanDat(ctx context.Context, path string, r io.Reader, want int, fn func(line int, fields []string) error) error {
	scanner := bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(r))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, datSeparator)
		if len(fields) != want {
			return fmt.Errorf("%w: %s:%d: expected %d fields, got %d", recommend.ErrConfiguration, path, line, want, len(fields))
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// parseRating builds a Rating from raw fields. ts may be empty.
func parseRating(user, item, value, ts string) (recommend.Rating, error) {
	r := recommend.Rating{
		UserID: strings.TrimSpace(user),
		ItemID: wholeNumber(strings.TrimSpace(item)),
	}
	if r.UserID == "" || r.ItemID == "" {
		return r, fmt.Errorf("missing user or item id")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return r, fmt.Errorf("bad rating %q", value)
	}
	r.Value = v
	if ts = strings.TrimSpace(ts); ts != "" {
		n, err := strconv.ParseInt(wholeNumber(ts), 10, 64)
		if err != nil {
			return r, fmt.Errorf("bad timestamp %q", ts)
		}
		r.Timestamp = n
	}
	return r, nil
}
