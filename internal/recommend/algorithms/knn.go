// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Neighbor is an item row with its cosine similarity to the query row.
type Neighbor struct {
	Row        int
	Similarity float64
}

// cell is one stored entry of a matrix column.
type cell struct {
	row   int
	value float64
}

// NeighborIndex is a brute-force cosine nearest-neighbor index over the rows
// of a sparse matrix. Every query compares against every fitted row.
//
// For query row q and candidate row r:
//
//	distance(q, r)   = 1 - (q . r) / (|q| |r|)
//	similarity(q, r) = 1 - distance(q, r)
//
// A row with no entries has similarity 0 to everything.
type NeighborIndex struct {
	BaseAlgorithm

	rows  []recommend.SparseVector
	norms []float64

	// columns lists the rows holding an entry in each column, so a query
	// only touches rows that share at least one column with it.
	columns [][]cell
}

// NewNeighborIndex creates an unfitted index.
func NewNeighborIndex() *NeighborIndex {
	return &NeighborIndex{
		BaseAlgorithm: NewBaseAlgorithm("itemknn"),
	}
}

// Fit indexes rows. numCols is the column count of the matrix; entries with
// a column outside [0, numCols) are rejected.
func (n *NeighborIndex) Fit(ctx context.Context, rows []recommend.SparseVector, numCols int) error {
	n.acquireTrainLock()
	defer n.releaseTrainLock()

	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	norms := make([]float64, len(rows))
	columns := make([][]cell, numCols)
	for r, row := range rows {
		for i, col := range row.Indices {
			if col < 0 || col >= numCols {
				return fmt.Errorf("%w: row %d has column %d outside [0, %d)",
					recommend.ErrConfiguration, r, col, numCols)
			}
			columns[col] = append(columns[col], cell{row: r, value: row.Values[i]})
		}
		norms[r] = row.Norm()

		if r%4096 == 0 && ContextCancelled(ctx) {
			return ctx.Err()
		}
	}

	n.rows = rows
	n.norms = norms
	n.columns = columns
	n.markTrained()
	return nil
}

// Len returns the number of fitted rows.
func (n *NeighborIndex) Len() int {
	n.acquirePredictLock()
	defer n.releasePredictLock()
	return len(n.rows)
}

// Neighbors returns the k rows nearest to row, nearest first, never
// including row itself. k is clamped to Len()-1. Ties are broken by
// ascending row index.
func (n *NeighborIndex) Neighbors(row, k int) ([]Neighbor, error) {
	n.acquirePredictLock()
	defer n.releasePredictLock()

	if err := n.checkRow(row, len(n.rows)); err != nil {
		return nil, err
	}

	if maxK := len(n.rows) - 1; k > maxK {
		k = maxK
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}

	dots := make([]float64, len(n.rows))
	q := n.rows[row]
	for i, col := range q.Indices {
		qv := q.Values[i]
		for _, c := range n.columns[col] {
			dots[c.row] += qv * c.value
		}
	}

	qNorm := n.norms[row]
	candidates := make([]Neighbor, 0, len(n.rows)-1)
	for r, dot := range dots {
		if r == row {
			continue
		}
		var sim float64
		if qNorm > 0 && n.norms[r] > 0 {
			sim = dot / (qNorm * n.norms[r])
		}
		distance := 1 - sim
		candidates = append(candidates, Neighbor{Row: r, Similarity: 1 - distance})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].Row < candidates[j].Row
	})

	return candidates[:k], nil
}
