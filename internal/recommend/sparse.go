// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "math"

// SparseVector is one row of a sparse matrix. Indices are strictly
// ascending and Values[i] is the entry at column Indices[i].
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of stored entries.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// Norm returns the Euclidean norm.
func (v SparseVector) Norm() float64 {
	var sq float64
	for _, x := range v.Values {
		sq += x * x
	}
	return math.Sqrt(sq)
}

// Dot returns the dot product with w by merging the two index lists.
func (v SparseVector) Dot(w SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(w.Indices) {
		switch {
		case v.Indices[i] == w.Indices[j]:
			sum += v.Values[i] * w.Values[j]
			i++
			j++
		case v.Indices[i] < w.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
