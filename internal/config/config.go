// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package config loads ReelMatch configuration.
//
// Loading order (Koanf v2), later layers win:
//  1. Defaults from defaultConfig
//  2. Optional YAML file (CONFIG_PATH or one of DefaultConfigPaths)
//  3. Environment variables listed in envMappings
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Invalid configuration")
//	}
//	engineCfg, err := cfg.Recommend.EngineConfig()
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Recommend RecommendConfig `koanf:"recommend"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Enrich    EnrichConfig    `koanf:"enrich"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// RequestTimeout bounds one API request, metadata lookups included.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`

	// CORSOrigins is a comma-separated list in the environment.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP. 0 disables.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DatasetConfig locates the catalog and ratings files.
type DatasetConfig struct {
	// MoviesPath is the enriched movie CSV.
	MoviesPath string `koanf:"movies_path" validate:"required"`

	// RatingsPath holds user ratings, in RatingsFormat.
	RatingsPath string `koanf:"ratings_path" validate:"required"`

	// RatingsFormat is "dat" (user::item::rating::ts), "csv", or "auto"
	// to pick by file extension.
	RatingsFormat string `koanf:"ratings_format" validate:"oneof=auto dat csv"`

	// CatalogPath is the ratings-side catalog (movies.dat). Optional; when
	// empty, collaborative titles come from the enriched CSV.
	CatalogPath string `koanf:"catalog_path"`
}

// WeightConfig is one feature weight. The environment form is
// "genres=0.2,keywords=0.15".
type WeightConfig struct {
	Name   string  `koanf:"name" validate:"required"`
	Weight float64 `koanf:"weight" validate:"gte=0,lte=1"`
}

// RecommendConfig holds engine parameters. EngineConfig converts it into
// the recommend.Config the engine consumes.
type RecommendConfig struct {
	TextWeights    []WeightConfig `koanf:"text_weights" validate:"dive"`
	NumericWeights []WeightConfig `koanf:"numeric_weights" validate:"dive"`

	MinRatingCount     int     `koanf:"min_rating_count" validate:"min=1"`
	MergePolicy        string  `koanf:"merge_policy" validate:"oneof=last average"`
	Neighbors          int     `koanf:"neighbors" validate:"min=1"`
	ContentWeight      float64 `koanf:"content_weight" validate:"gte=0,lte=1"`
	DefaultN           int     `koanf:"default_n" validate:"min=1"`
	MaxN               int     `koanf:"max_n" validate:"min=1"`
	ContentFetchFactor int     `koanf:"content_fetch_factor" validate:"min=1"`

	// MinRating and MinVotes are the hybrid defaults; 0 disables a threshold.
	MinRating float64 `koanf:"min_rating" validate:"gte=0,lte=10"`
	MinVotes  float64 `koanf:"min_votes" validate:"gte=0"`

	TitleCutoff          float64 `koanf:"title_cutoff" validate:"gte=0,lte=1"`
	TitleMatches         int     `koanf:"title_matches" validate:"min=1"`
	AlternateSearchBelow int     `koanf:"alternate_search_below" validate:"min=0"`

	// RebuildInterval reloads the dataset and swaps in a new snapshot.
	// 0 disables periodic rebuilds.
	RebuildInterval time.Duration `koanf:"rebuild_interval" validate:"min=0"`

	// ResultCacheSize bounds the query result LRU. 0 disables it.
	ResultCacheSize int `koanf:"result_cache_size" validate:"min=0"`
}

// TMDBConfig holds metadata service settings.
type TMDBConfig struct {
	// Enabled turns on free-text content resolution. Without it, content
	// queries fall back to the local title index.
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url" validate:"required,url"`
	APIKey  string `koanf:"api_key"`

	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int           `koanf:"burst" validate:"min=1"`
	MaxRetries        int           `koanf:"max_retries" validate:"min=0,max=10"`
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay" validate:"gt=0"`

	// CacheEnabled stores successful responses in BadgerDB for CacheTTL.
	// An empty CachePath keeps the cache in memory.
	CacheEnabled bool          `koanf:"cache_enabled"`
	CachePath    string        `koanf:"cache_path"`
	CacheTTL     time.Duration `koanf:"cache_ttl" validate:"gt=0"`
}

// EnrichConfig holds settings for the offline catalog enricher.
type EnrichConfig struct {
	// InputPath is a movies.dat catalog.
	InputPath string `koanf:"input_path"`

	// OutputPath receives the enriched CSV.
	OutputPath string `koanf:"output_path"`

	Workers int    `koanf:"workers" validate:"min=1,max=32"`
	Locale  string `koanf:"locale" validate:"locale"`
}

// EngineConfig converts the section into a validated recommend.Config.
func (r *RecommendConfig) EngineConfig() (*recommend.Config, error) {
	cfg := recommend.DefaultConfig()
	cfg.TextWeights = toFeatureWeights(r.TextWeights)
	cfg.NumericWeights = toFeatureWeights(r.NumericWeights)
	cfg.MinRatingCount = r.MinRatingCount
	cfg.MergePolicy = r.MergePolicy
	cfg.Neighbors = r.Neighbors
	cfg.ContentWeight = r.ContentWeight
	cfg.DefaultN = r.DefaultN
	cfg.MaxN = r.MaxN
	cfg.ContentFetchFactor = r.ContentFetchFactor
	cfg.TitleCutoff = r.TitleCutoff
	cfg.TitleMatches = r.TitleMatches
	cfg.AlternateSearchBelow = r.AlternateSearchBelow

	cfg.HybridFilter = recommend.Filter{}
	if r.MinRating > 0 {
		v := r.MinRating
		cfg.HybridFilter.MinRating = &v
	}
	if r.MinVotes > 0 {
		v := r.MinVotes
		cfg.HybridFilter.MinVotes = &v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toFeatureWeights(in []WeightConfig) []recommend.FeatureWeight {
	out := make([]recommend.FeatureWeight, len(in))
	for i, w := range in {
		out[i] = recommend.FeatureWeight{Name: w.Name, Weight: w.Weight}
	}
	return out
}

func fromFeatureWeights(in []recommend.FeatureWeight) []WeightConfig {
	out := make([]WeightConfig, len(in))
	for i, w := range in {
		out[i] = WeightConfig{Name: w.Name, Weight: w.Weight}
	}
	return out
}
