// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"fmt"
	"math"
)

// Feature names understood by the feature store.
const (
	FeatureGenres              = "genres"
	FeatureKeywords            = "keywords"
	FeatureOverview            = "overview"
	FeatureDirector            = "director"
	FeatureTopActors           = "top_actors"
	FeatureProductionCompanies = "production_companies"
	FeatureProductionCountries = "production_countries"

	FeatureVoteAverage = "vote_average"
	FeaturePopularity  = "popularity"
	FeatureRuntime     = "runtime"
	FeatureVoteCount   = "vote_count"
)

// Duplicate rating merge policies.
const (
	MergeLastWrite = "last"
	MergeAverage   = "average"
)

// weightTolerance bounds the float error allowed in the weight sum check.
const weightTolerance = 1e-9

// FeatureWeight pairs a feature name with its weight in the similarity sum.
type FeatureWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Config holds recommendation engine parameters.
type Config struct {
	// TextWeights are applied in order to per-feature cosine similarities.
	TextWeights []FeatureWeight `json:"text_weights"`

	// NumericWeights are applied in order to 1-|delta| numeric similarities.
	// Text and numeric weights together must sum to 1.0.
	NumericWeights []FeatureWeight `json:"numeric_weights"`

	// MinRatingCount is the collaborative eligibility threshold.
	// Default: 10.
	MinRatingCount int `json:"min_rating_count"`

	// MergePolicy resolves duplicate (user, item) ratings: "last" or "average".
	// Default: "last".
	MergePolicy string `json:"merge_policy"`

	// Neighbors is the neighbor count k for collaborative queries.
	// Default: 10.
	Neighbors int `json:"neighbors"`

	// ContentWeight is the hybrid blend weight for the content signal.
	// The collaborative weight is 1 - ContentWeight. Default: 0.3.
	ContentWeight float64 `json:"content_weight"`

	// DefaultN is the number of recommendations when the caller gives none.
	// Default: 5.
	DefaultN int `json:"default_n"`

	// MaxN caps caller supplied result sizes. Default: 100.
	MaxN int `json:"max_n"`

	// ContentFetchFactor multiplies n when the hybrid path asks the content
	// engine for candidates. Default: 2.
	ContentFetchFactor int `json:"content_fetch_factor"`

	// HybridFilter is the default threshold set for hybrid requests.
	// Defaults: min_rating 7.0, min_votes 1000.
	HybridFilter Filter `json:"hybrid_filter"`

	// TitleCutoff is the fuzzy title match cutoff. Default: 0.6.
	TitleCutoff float64 `json:"title_cutoff"`

	// TitleMatches is the number of fuzzy title candidates. Default: 3.
	TitleMatches int `json:"title_matches"`

	// AlternateSearchBelow triggers a second-locale metadata search when
	// the primary search returns fewer results. Default: 3.
	AlternateSearchBelow int `json:"alternate_search_below"`
}

// DefaultTextWeights returns the default text feature weights.
func DefaultTextWeights() []FeatureWeight {
	return []FeatureWeight{
		{Name: FeatureGenres, Weight: 0.20},
		{Name: FeatureKeywords, Weight: 0.15},
		{Name: FeatureOverview, Weight: 0.15},
		{Name: FeatureDirector, Weight: 0.10},
		{Name: FeatureTopActors, Weight: 0.10},
		{Name: FeatureProductionCompanies, Weight: 0.05},
		{Name: FeatureProductionCountries, Weight: 0.05},
	}
}

// DefaultNumericWeights returns the default numeric feature weights.
func DefaultNumericWeights() []FeatureWeight {
	return []FeatureWeight{
		{Name: FeatureVoteAverage, Weight: 0.08},
		{Name: FeaturePopularity, Weight: 0.05},
		{Name: FeatureRuntime, Weight: 0.04},
		{Name: FeatureVoteCount, Weight: 0.03},
	}
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	minRating := 7.0
	minVotes := 1000.0
	return &Config{
		TextWeights:          DefaultTextWeights(),
		NumericWeights:       DefaultNumericWeights(),
		MinRatingCount:       10,
		MergePolicy:          MergeLastWrite,
		Neighbors:            10,
		ContentWeight:        0.3,
		DefaultN:             5,
		MaxN:                 100,
		ContentFetchFactor:   2,
		HybridFilter:         Filter{MinRating: &minRating, MinVotes: &minVotes},
		TitleCutoff:          0.6,
		TitleMatches:         3,
		AlternateSearchBelow: 3,
	}
}

// WeightSum returns the total of text and numeric weights.
func (c *Config) WeightSum() float64 {
	var sum float64
	for _, fw := range c.TextWeights {
		sum += fw.Weight
	}
	for _, fw := range c.NumericWeights {
		sum += fw.Weight
	}
	return sum
}

// FeatureColumns lists the movie table columns the declared features read,
// text features first.
func (c *Config) FeatureColumns() []string {
	out := make([]string, 0, len(c.TextWeights)+len(c.NumericWeights))
	for _, fw := range c.TextWeights {
		out = append(out, fw.Name)
	}
	for _, fw := range c.NumericWeights {
		out = append(out, fw.Name)
	}
	return out
}

// Validate checks the configuration. Weight and feature problems wrap
// ErrConfiguration; a bad hybrid weight wraps ErrInvalidWeight.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if len(c.TextWeights) == 0 && len(c.NumericWeights) == 0 {
		return fmt.Errorf("%w: no feature weights declared", ErrConfiguration)
	}

	seen := make(map[string]struct{}, len(c.TextWeights)+len(c.NumericWeights))
	for _, group := range [][]FeatureWeight{c.TextWeights, c.NumericWeights} {
		for _, fw := range group {
			if fw.Weight < 0 {
				return fmt.Errorf("%w: weight for %q must be non-negative, got %f", ErrConfiguration, fw.Name, fw.Weight)
			}
			if _, dup := seen[fw.Name]; dup {
				return fmt.Errorf("%w: feature %q declared twice", ErrConfiguration, fw.Name)
			}
			seen[fw.Name] = struct{}{}
		}
	}

	if sum := c.WeightSum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: feature weights must sum to 1.0, got %.12f", ErrConfiguration, sum)
	}

	if err := ValidateContentWeight(c.ContentWeight); err != nil {
		return err
	}

	if c.MinRatingCount < 1 {
		return fmt.Errorf("%w: min_rating_count must be positive, got %d", ErrConfiguration, c.MinRatingCount)
	}
	if c.MergePolicy != MergeLastWrite && c.MergePolicy != MergeAverage {
		return fmt.Errorf("%w: merge_policy must be %q or %q, got %q", ErrConfiguration, MergeLastWrite, MergeAverage, c.MergePolicy)
	}
	if c.Neighbors < 1 {
		return fmt.Errorf("%w: neighbors must be positive, got %d", ErrConfiguration, c.Neighbors)
	}
	if c.DefaultN < 1 {
		return fmt.Errorf("%w: default_n must be positive, got %d", ErrConfiguration, c.DefaultN)
	}
	if c.MaxN < c.DefaultN {
		return fmt.Errorf("%w: max_n must be >= default_n, got %d < %d", ErrConfiguration, c.MaxN, c.DefaultN)
	}
	if c.ContentFetchFactor < 1 {
		return fmt.Errorf("%w: content_fetch_factor must be positive, got %d", ErrConfiguration, c.ContentFetchFactor)
	}
	if c.TitleCutoff < 0 || c.TitleCutoff > 1 {
		return fmt.Errorf("%w: title_cutoff must be in [0, 1], got %f", ErrConfiguration, c.TitleCutoff)
	}
	if c.TitleMatches < 1 {
		return fmt.Errorf("%w: title_matches must be positive, got %d", ErrConfiguration, c.TitleMatches)
	}
	if c.AlternateSearchBelow < 0 {
		return fmt.Errorf("%w: alternate_search_below must be non-negative, got %d", ErrConfiguration, c.AlternateSearchBelow)
	}

	return nil
}

// ValidateContentWeight rejects hybrid weights outside [0, 1].
func ValidateContentWeight(w float64) error {
	if math.IsNaN(w) || w < 0 || w > 1 {
		return fmt.Errorf("%w: content weight must be in [0, 1], got %v", ErrInvalidWeight, w)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.TextWeights = append([]FeatureWeight(nil), c.TextWeights...)
	clone.NumericWeights = append([]FeatureWeight(nil), c.NumericWeights...)
	clone.HybridFilter = c.HybridFilter.Clone()
	return &clone
}

// Clone returns a copy of the filter that shares no pointers.
func (f Filter) Clone() Filter {
	var out Filter
	if f.MinRating != nil {
		v := *f.MinRating
		out.MinRating = &v
	}
	if f.MinVotes != nil {
		v := *f.MinVotes
		out.MinVotes = &v
	}
	return out
}
