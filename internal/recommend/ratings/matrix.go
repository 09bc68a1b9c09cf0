// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package ratings builds the sparse item-by-user rating matrix used by the
// collaborative engine.
//
// Two identifier spaces are kept apart: every item seen in the ratings
// (Known) and the items that cleared the minimum rating count and therefore
// own a matrix row (Row).
package ratings

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// idWidth is the zero-padded width tried when an id is not found verbatim.
const idWidth = 7

// ItemStat aggregates every rating of one item.
type ItemStat struct {
	Count int
	Mean  float64
}

// Matrix is an immutable item-by-user rating matrix. Row order is ascending
// item id; column order is the first appearance of each user among the
// ratings of eligible items.
type Matrix struct {
	// Rows holds one rating vector per eligible item.
	Rows []recommend.SparseVector

	items []string
	users []string
	rowOf map[string]int
	stats map[string]ItemStat

	minRatingCount int
	ratingCount    int
	duplicates     int
}

type cellKey struct {
	row, col int
}

type cellAgg struct {
	sum   float64
	count int
	last  float64
}

// Build aggregates ratings into a Matrix. Items with fewer than
// minRatingCount ratings are counted in the statistics but get no row.
// Duplicate (user, item) pairs are merged by policy: recommend.MergeLastWrite
// keeps the rating that appears last, recommend.MergeAverage keeps the mean.
func Build(ctx context.Context, ratings []recommend.Rating, minRatingCount int, policy string) (*Matrix, error) {
	if minRatingCount < 1 {
		return nil, fmt.Errorf("%w: min rating count must be positive, got %d", recommend.ErrConfiguration, minRatingCount)
	}
	if policy == "" {
		policy = recommend.MergeLastWrite
	}
	if policy != recommend.MergeLastWrite && policy != recommend.MergeAverage {
		return nil, fmt.Errorf("%w: unknown merge policy %q", recommend.ErrConfiguration, policy)
	}

	m := &Matrix{
		stats:          make(map[string]ItemStat),
		rowOf:          make(map[string]int),
		minRatingCount: minRatingCount,
		ratingCount:    len(ratings),
	}

	sums := make(map[string]float64)
	for i := range ratings {
		r := &ratings[i]
		st := m.stats[r.ItemID]
		st.Count++
		m.stats[r.ItemID] = st
		sums[r.ItemID] += r.Value
	}
	for id, st := range m.stats {
		st.Mean = sums[id] / float64(st.Count)
		m.stats[id] = st
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	for id, st := range m.stats {
		if st.Count >= minRatingCount {
			m.items = append(m.items, id)
		}
	}
	sort.Strings(m.items)
	for row, id := range m.items {
		m.rowOf[id] = row
	}

	colOf := make(map[string]int)
	cells := make(map[cellKey]*cellAgg)
	perRow := make([][]int, len(m.items))
	for i := range ratings {
		r := &ratings[i]
		row, ok := m.rowOf[r.ItemID]
		if !ok {
			continue
		}
		col, ok := colOf[r.UserID]
		if !ok {
			col = len(m.users)
			colOf[r.UserID] = col
			m.users = append(m.users, r.UserID)
		}

		key := cellKey{row: row, col: col}
		agg, ok := cells[key]
		if !ok {
			agg = &cellAgg{}
			cells[key] = agg
			perRow[row] = append(perRow[row], col)
		} else {
			m.duplicates++
		}
		agg.sum += r.Value
		agg.count++
		agg.last = r.Value
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.Rows = make([]recommend.SparseVector, len(m.items))
	for row, cols := range perRow {
		sort.Ints(cols)
		values := make([]float64, len(cols))
		for i, col := range cols {
			agg := cells[cellKey{row: row, col: col}]
			if policy == recommend.MergeAverage {
				values[i] = agg.sum / float64(agg.count)
			} else {
				values[i] = agg.last
			}
		}
		m.Rows[row] = recommend.SparseVector{Indices: cols, Values: values}
	}

	return m, nil
}

// NormalizeID left-pads a numeric id with zeros to the catalog width.
// Ids that are not all digits, or already wide enough, are returned as-is.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || len(id) >= idWidth {
		return id
	}
	for _, ch := range id {
		if ch < '0' || ch > '9' {
			return id
		}
	}
	return strings.Repeat("0", idWidth-len(id)) + id
}

// Resolve returns the canonical form of id: id itself when it is known,
// otherwise its zero-padded form when that is known.
func (m *Matrix) Resolve(id string) (string, bool) {
	if _, ok := m.stats[id]; ok {
		return id, true
	}
	padded := NormalizeID(id)
	if _, ok := m.stats[padded]; ok {
		return padded, true
	}
	return "", false
}

// Known reports whether id (or its padded form) appears in any rating.
func (m *Matrix) Known(id string) bool {
	_, ok := m.Resolve(id)
	return ok
}

// Row returns the matrix row of id. An id never rated, or rated fewer than
// the minimum count, wraps recommend.ErrUnknownItem.
func (m *Matrix) Row(id string) (int, error) {
	canonical, ok := m.Resolve(id)
	if !ok {
		return -1, fmt.Errorf("%w: item %q has no ratings", recommend.ErrUnknownItem, id)
	}
	row, ok := m.rowOf[canonical]
	if !ok {
		return -1, fmt.Errorf("%w: item %q has %d ratings, below the minimum %d",
			recommend.ErrUnknownItem, canonical, m.stats[canonical].Count, m.minRatingCount)
	}
	return row, nil
}

// ItemAt returns the item id of a matrix row.
func (m *Matrix) ItemAt(row int) (string, bool) {
	if row < 0 || row >= len(m.items) {
		return "", false
	}
	return m.items[row], true
}

// Stats returns the rating statistics of id across all ratings.
func (m *Matrix) Stats(id string) (ItemStat, bool) {
	canonical, ok := m.Resolve(id)
	if !ok {
		return ItemStat{}, false
	}
	return m.stats[canonical], true
}

// Details returns the rating summary of id, or false when it was never rated.
func (m *Matrix) Details(id string) (recommend.ItemStats, bool) {
	canonical, ok := m.Resolve(id)
	if !ok {
		return recommend.ItemStats{}, false
	}
	st := m.stats[canonical]
	_, inModel := m.rowOf[canonical]
	return recommend.ItemStats{
		ItemID:          canonical,
		AverageRating:   st.Mean,
		NumberOfRatings: st.Count,
		IncludedInModel: inModel,
	}, true
}

// AllItemIDs returns every rated item id in ascending order.
func (m *Matrix) AllItemIDs() []string {
	ids := make([]string, 0, len(m.stats))
	for id := range m.stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NumItems returns the number of matrix rows.
func (m *Matrix) NumItems() int { return len(m.items) }

// NumUsers returns the number of matrix columns.
func (m *Matrix) NumUsers() int { return len(m.users) }

// NumRatings returns the number of input ratings.
func (m *Matrix) NumRatings() int { return m.ratingCount }

// Duplicates returns how many (user, item) pairs were merged.
func (m *Matrix) Duplicates() int { return m.duplicates }

// UserAt returns the user id of a matrix column.
func (m *Matrix) UserAt(col int) (string, bool) {
	if col < 0 || col >= len(m.users) {
		return "", false
	}
	return m.users[col], true
}
