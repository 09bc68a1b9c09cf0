// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/textnorm"
)

// textColumn describes how a text feature is read from a movie.
type textColumn struct {
	// longForm columns are segmented and stopword filtered.
	longForm bool
	extract  func(*recommend.Movie) string
}

var textColumns = map[string]textColumn{
	recommend.FeatureGenres: {
		extract: func(m *recommend.Movie) string { return strings.Join(m.Genres, " ") },
	},
	recommend.FeatureKeywords: {
		longForm: true,
		extract:  func(m *recommend.Movie) string { return m.Keywords },
	},
	recommend.FeatureOverview: {
		longForm: true,
		extract:  func(m *recommend.Movie) string { return m.Overview },
	},
	recommend.FeatureDirector: {
		extract: func(m *recommend.Movie) string { return m.Director },
	},
	recommend.FeatureTopActors: {
		extract: func(m *recommend.Movie) string { return strings.Join(m.TopActors, ", ") },
	},
	recommend.FeatureProductionCompanies: {
		extract: func(m *recommend.Movie) string { return m.ProductionCompanies },
	},
	recommend.FeatureProductionCountries: {
		extract: func(m *recommend.Movie) string { return m.ProductionCountries },
	},
}

var numericColumns = map[string]func(*recommend.Movie) sql.NullFloat64{
	recommend.FeatureVoteAverage: func(m *recommend.Movie) sql.NullFloat64 { return m.VoteAverage },
	recommend.FeaturePopularity:  func(m *recommend.Movie) sql.NullFloat64 { return m.Popularity },
	recommend.FeatureRuntime:     func(m *recommend.Movie) sql.NullFloat64 { return m.Runtime },
	recommend.FeatureVoteCount:   func(m *recommend.Movie) sql.NullFloat64 { return m.VoteCount },
}

// IsTextFeature reports whether name is a known text feature.
func IsTextFeature(name string) bool {
	_, ok := textColumns[name]
	return ok
}

// IsNumericFeature reports whether name is a known numeric feature.
func IsNumericFeature(name string) bool {
	_, ok := numericColumns[name]
	return ok
}

// TextFeature is a weighted TF-IDF feature.
type TextFeature struct {
	Name   string
	Weight float64
	Matrix *TFIDFMatrix
}

// NumericFeature is a weighted min-max scaled feature.
type NumericFeature struct {
	Name   string
	Weight float64
	Column NumericColumn
}

// Store holds every feature matrix of one catalog. Row i of each matrix is
// catalog row i. A Store is immutable after Build and safe for concurrent
// readers.
type Store struct {
	rows    int
	text    []TextFeature
	numeric []NumericFeature
}

// Build derives the feature store from the catalog. Features are built in
// the declared weight order. An unknown feature name wraps
// recommend.ErrConfiguration.
func Build(ctx context.Context, movies []recommend.Movie, textWeights, numericWeights []recommend.FeatureWeight, norm *textnorm.Normalizer) (*Store, error) {
	if norm == nil {
		norm = textnorm.New(nil)
	}
	for _, fw := range textWeights {
		if !IsTextFeature(fw.Name) {
			return nil, fmt.Errorf("%w: unknown text feature %q", recommend.ErrConfiguration, fw.Name)
		}
	}
	for _, fw := range numericWeights {
		if !IsNumericFeature(fw.Name) {
			return nil, fmt.Errorf("%w: unknown numeric feature %q", recommend.ErrConfiguration, fw.Name)
		}
	}

	s := &Store{
		rows:    len(movies),
		text:    make([]TextFeature, 0, len(textWeights)),
		numeric: make([]NumericFeature, 0, len(numericWeights)),
	}

	for _, fw := range textWeights {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col := textColumns[fw.Name]
		docs := make([]string, len(movies))
		for i := range movies {
			docs[i] = norm.Text(col.extract(&movies[i]), col.longForm)
		}
		s.text = append(s.text, TextFeature{Name: fw.Name, Weight: fw.Weight, Matrix: FitTFIDF(docs)})
	}

	for _, fw := range numericWeights {
		extract := numericColumns[fw.Name]
		values := make([]sql.NullFloat64, len(movies))
		for i := range movies {
			values[i] = extract(&movies[i])
		}
		s.numeric = append(s.numeric, NumericFeature{Name: fw.Name, Weight: fw.Weight, Column: ScaleMinMax(values)})
	}

	return s, nil
}

// Rows returns the number of catalog rows.
func (s *Store) Rows() int {
	return s.rows
}

// Text returns the text features in declared order.
func (s *Store) Text() []TextFeature {
	return s.text
}

// Numeric returns the numeric features in declared order.
func (s *Store) Numeric() []NumericFeature {
	return s.numeric
}

// VocabularySize returns the total vocabulary across text features.
func (s *Store) VocabularySize() int {
	n := 0
	for _, tf := range s.text {
		n += len(tf.Matrix.Vocabulary)
	}
	return n
}
