// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package algorithms

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/features"
)

// ContentSimilarity scores catalog rows by weighted feature similarity.
//
// Each text feature contributes w * cosine of its TF-IDF rows; each numeric
// feature contributes w * (1 - |a - b|) of its scaled values. With weights
// summing to 1 the result lies in [0, 1] and a row is always at least as
// similar to itself as to any other row.
type ContentSimilarity struct {
	BaseAlgorithm

	store *features.Store

	// Raw attributes for threshold filters; missing values fail every filter.
	voteAverage []sql.NullFloat64
	voteCount   []sql.NullFloat64
}

// NewContentSimilarity creates an unfitted content engine.
func NewContentSimilarity() *ContentSimilarity {
	return &ContentSimilarity{
		BaseAlgorithm: NewBaseAlgorithm("content"),
	}
}

// Fit binds the engine to a feature store built from movies. The store and
// the catalog must have the same row count.
func (c *ContentSimilarity) Fit(ctx context.Context, store *features.Store, movies []recommend.Movie) error {
	c.acquireTrainLock()
	defer c.releaseTrainLock()

	if ContextCancelled(ctx) {
		return ctx.Err()
	}
	if store == nil {
		return fmt.Errorf("%w: nil feature store", recommend.ErrConfiguration)
	}
	if store.Rows() != len(movies) {
		return fmt.Errorf("%w: feature store has %d rows, catalog has %d",
			recommend.ErrConfiguration, store.Rows(), len(movies))
	}

	c.store = store
	c.voteAverage = make([]sql.NullFloat64, len(movies))
	c.voteCount = make([]sql.NullFloat64, len(movies))
	for i := range movies {
		c.voteAverage[i] = movies[i].VoteAverage
		c.voteCount[i] = movies[i].VoteCount
	}

	c.markTrained()
	return nil
}

// Rows returns the number of fitted catalog rows.
func (c *ContentSimilarity) Rows() int {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	if c.store == nil {
		return 0
	}
	return c.store.Rows()
}

// SimilarityVector returns the similarity of row to every catalog row,
// itself included.
func (c *ContentSimilarity) SimilarityVector(row int) ([]float64, error) {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if err := c.checkRow(row, c.rows()); err != nil {
		return nil, err
	}
	return c.similarityVector(row), nil
}

func (c *ContentSimilarity) rows() int {
	if c.store == nil {
		return 0
	}
	return c.store.Rows()
}

func (c *ContentSimilarity) similarityVector(row int) []float64 {
	out := make([]float64, c.store.Rows())

	for _, tf := range c.store.Text() {
		tf.Matrix.CosineInto(out, row, tf.Weight)
	}

	for _, nf := range c.store.Numeric() {
		scaled := nf.Column.Scaled
		q := scaled[row]
		for r, v := range scaled {
			out[r] += nf.Weight * (1 - math.Abs(v-q))
		}
	}

	return out
}

// Passes reports whether row meets every threshold of filter.
func (c *ContentSimilarity) Passes(row int, filter recommend.Filter) bool {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	if row < 0 || row >= len(c.voteAverage) {
		return false
	}
	return c.passes(row, filter)
}

func (c *ContentSimilarity) passes(row int, filter recommend.Filter) bool {
	if filter.MinRating != nil {
		v := c.voteAverage[row]
		if !v.Valid || v.Float64 < *filter.MinRating {
			return false
		}
	}
	if filter.MinVotes != nil {
		v := c.voteCount[row]
		if !v.Valid || v.Float64 < *filter.MinVotes {
			return false
		}
	}
	return true
}

// TopN returns the n rows most similar to row, excluding row itself.
//
// Rows failing filter keep their position but score 0, so when fewer than n
// rows pass, zero-scored rows can fill the tail. Callers that need strict
// filtering re-check with Passes.
func (c *ContentSimilarity) TopN(row, n int, filter recommend.Filter) ([]Scored, error) {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if err := c.checkRow(row, c.rows()); err != nil {
		return nil, err
	}

	scores := c.similarityVector(row)
	if filter.MinRating != nil || filter.MinVotes != nil {
		for r := range scores {
			if !c.passes(r, filter) {
				scores[r] = 0
			}
		}
	}

	return rankDescending(scores, row, n), nil
}
