// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package algorithms

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// BaseAlgorithm provides common functionality for the engines.
type BaseAlgorithm struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name: name,
	}
}

// Name returns the engine identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained returns whether the engine has been fitted.
func (b *BaseAlgorithm) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns how many times the engine has been fitted.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the engine was last fitted.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTrained updates the trained state.
// Must be called while holding the training lock (acquireTrainLock).
func (b *BaseAlgorithm) markTrained() {
	b.trained = true
	b.version++
	b.lastTrainedAt = time.Now()
}

func (b *BaseAlgorithm) acquireTrainLock() {
	b.mu.Lock()
}

func (b *BaseAlgorithm) releaseTrainLock() {
	b.mu.Unlock()
}

func (b *BaseAlgorithm) acquirePredictLock() {
	b.mu.RLock()
}

func (b *BaseAlgorithm) releasePredictLock() {
	b.mu.RUnlock()
}

// checkRow validates a query row. Must be called while holding the
// prediction lock.
func (b *BaseAlgorithm) checkRow(row, rows int) error {
	if !b.trained {
		return fmt.Errorf("%w: %s", recommend.ErrUntrainedModel, b.name)
	}
	if row < 0 || row >= rows {
		return fmt.Errorf("%w: row %d outside [0, %d)", recommend.ErrUnknownItem, row, rows)
	}
	return nil
}

// Scored is a catalog row with its similarity score.
type Scored struct {
	Row   int
	Score float64
}

// rankDescending orders every row except exclude by score descending with
// ties broken by ascending row, and returns the first n.
func rankDescending(scores []float64, exclude, n int) []Scored {
	ranked := make([]Scored, 0, len(scores))
	for row, s := range scores {
		if row == exclude {
			continue
		}
		ranked = append(ranked, Scored{Row: row, Score: s})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Row < ranked[j].Row
	})

	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
