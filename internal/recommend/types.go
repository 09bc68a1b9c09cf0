// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"database/sql"
	"time"
)

// Movie is one row of the enriched movie catalog.
// Row position in the loaded table is the index into every feature matrix
// built from it, so a catalog is never reordered after load.
type Movie struct {
	// ItemID is the stable catalog identifier shared with the ratings data.
	ItemID string

	// TMDBID is the metadata service identifier (0 when unknown).
	TMDBID int64

	Title string
	Year  string

	// Genres is the set of genre names in catalog order.
	Genres []string

	// Overview and Keywords are long-form text (mixed Latin and CJK).
	Overview string
	Keywords string

	Director string

	// TopActors holds at most MaxTopActors names, most popular first.
	TopActors []string

	ProductionCompanies string
	ProductionCountries string

	// Numeric attributes may be missing in the source data.
	VoteAverage sql.NullFloat64
	VoteCount   sql.NullFloat64
	Popularity  sql.NullFloat64
	Runtime     sql.NullFloat64
}

// MaxTopActors caps Movie.TopActors.
const MaxTopActors = 5

// Rating is a single user rating of a catalog item.
type Rating struct {
	UserID    string
	ItemID    string
	Value     float64
	Timestamp int64
}

// CatalogEntry is a row of the ratings-side catalog ("Title (Year)" form).
type CatalogEntry struct {
	ItemID    string
	TitleYear string
	Genres    []string
}

// Filter holds optional numeric thresholds applied to content results.
// A nil field disables that threshold.
type Filter struct {
	MinRating *float64 `json:"min_rating,omitempty"`
	MinVotes  *float64 `json:"min_votes,omitempty"`
}

// ContentRecommendation is a content-similarity result row.
type ContentRecommendation struct {
	ItemID          string   `json:"item_id"`
	TMDBID          int64    `json:"tmdb_id,omitempty"`
	Title           string   `json:"title"`
	Year            string   `json:"year,omitempty"`
	Genres          []string `json:"genres"`
	Director        string   `json:"director,omitempty"`
	TopActors       []string `json:"top_actors"`
	VoteAverage     float64  `json:"vote_average"`
	VoteCount       float64  `json:"vote_count"`
	Runtime         float64  `json:"runtime"`
	SimilarityScore float64  `json:"similarity_score"`
}

// CollaborativeRecommendation is a rating-neighbor result row.
type CollaborativeRecommendation struct {
	ItemID      string  `json:"item_id"`
	Title       string  `json:"title,omitempty"`
	Similarity  float64 `json:"similarity"`
	MeanRating  float64 `json:"mean_rating"`
	RatingCount int     `json:"rating_count"`
}

// HybridRecommendation is a fused result row.
type HybridRecommendation struct {
	ItemID        string   `json:"item_id,omitempty"`
	TMDBID        int64    `json:"tmdb_id,omitempty"`
	Title         string   `json:"title"`
	Year          string   `json:"year,omitempty"`
	Genres        []string `json:"genres"`
	Director      string   `json:"director,omitempty"`
	VoteAverage   float64  `json:"vote_average"`
	ContentScore  float64  `json:"content_score"`
	CFScore       float64  `json:"cf_score"`
	CombinedScore float64  `json:"combined_score"`
}

// ItemStats summarizes the ratings of one item.
type ItemStats struct {
	ItemID          string  `json:"item_id"`
	AverageRating   float64 `json:"average_rating"`
	NumberOfRatings int     `json:"number_of_ratings"`
	IncludedInModel bool    `json:"included_in_model"`
}

// TitleMatch is a fuzzy title lookup result on the ratings catalog.
type TitleMatch struct {
	Title  string  `json:"title"`
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// TitleScore is one entry of a ranked list. ItemID is carried when the
// producing engine knows it.
type TitleScore struct {
	Title  string
	ItemID string
	Score  float64
}

// Key identifies the entry in Combine: the item id, or the title without one.
func (ts TitleScore) Key() string {
	if ts.ItemID != "" {
		return ts.ItemID
	}
	return ts.Title
}

// CombinedScore is one fused entry produced by Combine.
type CombinedScore struct {
	Title         string
	ItemID        string
	ContentScore  float64
	CFScore       float64
	CombinedScore float64
}

// Key returns the TitleScore key the entry was fused under.
func (cs CombinedScore) Key() string {
	return TitleScore{Title: cs.Title, ItemID: cs.ItemID}.Key()
}

// Resolution describes how a free-text query resolved on the content side.
type Resolution struct {
	// Query is the text that was resolved.
	Query string `json:"query"`

	// Locale is the metadata locale used for the primary search.
	Locale string `json:"locale,omitempty"`

	// ExternalID is the metadata service id of the chosen candidate (0 if none).
	ExternalID int64 `json:"external_id,omitempty"`

	// Row is the local catalog row, or -1 when the movie is not in the catalog.
	Row int `json:"-"`

	// Title is the local catalog title when Row >= 0.
	Title string `json:"title,omitempty"`
}

// Found reports whether the query resolved to a local catalog row.
func (r Resolution) Found() bool {
	return r.Row >= 0
}

// SnapshotInfo describes a built snapshot.
type SnapshotInfo struct {
	Version       int64         `json:"version"`
	BuiltAt       time.Time     `json:"built_at"`
	BuildDuration time.Duration `json:"build_duration_ns"`
	Movies        int           `json:"movies"`
	Ratings       int           `json:"ratings"`
	MatrixItems   int           `json:"matrix_items"`
	MatrixUsers   int           `json:"matrix_users"`
	CatalogTitles int           `json:"catalog_titles"`
}
