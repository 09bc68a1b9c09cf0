// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package algorithms implements the two similarity engines behind the
// hybrid recommender.
//
// # Engines
//
// ContentSimilarity scores one catalog row against every other row using the
// weighted feature matrices of a features.Store:
//
//	sim(q, r) = sum_text   w_f * cosine(tfidf_f[q], tfidf_f[r])
//	          + sum_numeric w_f * (1 - |scaled_f[q] - scaled_f[r]|)
//
// NeighborIndex is an exhaustive cosine nearest-neighbor index over the
// sparse item-by-user rating matrix. It answers "the k items whose rating
// vectors are closest to item X".
//
// # Lifecycle
//
// Both engines are fitted once and then only read. Querying before Fit
// returns recommend.ErrUntrainedModel; an out-of-range row returns
// recommend.ErrUnknownItem.
//
//	idx := algorithms.NewNeighborIndex()
//	if err := idx.Fit(ctx, matrix.Rows, matrix.NumUsers()); err != nil {
//	    return err
//	}
//	neighbors, err := idx.Neighbors(row, 10)
//
// # Determinism
//
// Rankings sort by score and break ties by ascending row index, so identical
// inputs always produce identical outputs.
//
// # Thread Safety
//
// Fitting takes an exclusive lock and queries take a shared lock, so a
// fitted engine can serve concurrent readers.
package algorithms
