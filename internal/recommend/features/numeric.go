// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"database/sql"
)

// NumericColumn is a numeric feature after mean imputation and min-max
// scaling. Scaled values lie in [0, 1].
type NumericColumn struct {
	Scaled []float64

	// Mean, Min and Max are computed after imputation.
	Mean float64
	Min  float64
	Max  float64

	// Missing counts the imputed entries.
	Missing int
}

// ScaleMinMax fills missing values with the mean of the present ones and
// scales the column to [0, 1]. A constant column scales to all zeros, and so
// does a column with no present values.
func ScaleMinMax(values []sql.NullFloat64) NumericColumn {
	col := NumericColumn{Scaled: make([]float64, len(values))}

	var sum float64
	present := 0
	for _, v := range values {
		if v.Valid {
			sum += v.Float64
			present++
		}
	}
	col.Missing = len(values) - present
	if present == 0 {
		return col
	}
	col.Mean = sum / float64(present)

	filled := make([]float64, len(values))
	for i, v := range values {
		if v.Valid {
			filled[i] = v.Float64
		} else {
			filled[i] = col.Mean
		}
	}

	col.Min, col.Max = filled[0], filled[0]
	for _, v := range filled[1:] {
		if v < col.Min {
			col.Min = v
		}
		if v > col.Max {
			col.Max = v
		}
	}

	span := col.Max - col.Min
	if span == 0 {
		return col
	}
	for i, v := range filled {
		col.Scaled[i] = (v - col.Min) / span
	}
	return col
}
