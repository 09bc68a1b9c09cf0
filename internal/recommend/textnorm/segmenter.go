// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package textnorm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-ego/gse"
)

// Segmenter splits text into words. Returned words may include blanks,
// which the Normalizer discards.
type Segmenter interface {
	Cut(text string) []string
}

// GSESegmenter segments Chinese text with the gse dictionary and HMM.
type GSESegmenter struct {
	seg gse.Segmenter
}

// NewGSESegmenter loads the embedded gse dictionary.
func NewGSESegmenter() (*GSESegmenter, error) {
	seg, err := gse.New()
	if err != nil {
		return nil, fmt.Errorf("load gse dictionary: %w", err)
	}
	return &GSESegmenter{seg: seg}, nil
}

// Cut implements Segmenter.
func (g *GSESegmenter) Cut(text string) []string {
	return g.seg.Cut(text, true)
}

var (
	sharedSeg     *GSESegmenter
	sharedSegErr  error
	sharedSegOnce sync.Once
)

// SharedSegmenter returns a process-wide GSESegmenter. The dictionary is
// loaded once on first use; later calls return the same instance or error.
func SharedSegmenter() (*GSESegmenter, error) {
	sharedSegOnce.Do(func() {
		sharedSeg, sharedSegErr = NewGSESegmenter()
	})
	return sharedSeg, sharedSegErr
}

// whitespaceSegmenter splits on whitespace only.
type whitespaceSegmenter struct{}

func (whitespaceSegmenter) Cut(text string) []string {
	return strings.Fields(text)
}
