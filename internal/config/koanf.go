// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// DefaultConfigPaths are searched in order; the first existing file is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmatch/config.yaml",
	"/etc/reelmatch/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RequestTimeout:    20 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Dataset: DatasetConfig{
			MoviesPath:    "data/enriched_movies.csv",
			RatingsPath:   "data/ratings.dat",
			RatingsFormat: "auto",
			CatalogPath:   "data/movies.dat",
		},
		Recommend: RecommendConfig{
			TextWeights:          fromFeatureWeights(engine.TextWeights),
			NumericWeights:       fromFeatureWeights(engine.NumericWeights),
			MinRatingCount:       engine.MinRatingCount,
			MergePolicy:          engine.MergePolicy,
			Neighbors:            engine.Neighbors,
			ContentWeight:        engine.ContentWeight,
			DefaultN:             engine.DefaultN,
			MaxN:                 engine.MaxN,
			ContentFetchFactor:   engine.ContentFetchFactor,
			MinRating:            *engine.HybridFilter.MinRating,
			MinVotes:             *engine.HybridFilter.MinVotes,
			TitleCutoff:          engine.TitleCutoff,
			TitleMatches:         engine.TitleMatches,
			AlternateSearchBelow: engine.AlternateSearchBelow,
			RebuildInterval:      0,
			ResultCacheSize:      1024,
		},
		TMDB: TMDBConfig{
			Enabled:           false,
			BaseURL:           "https://api.themoviedb.org/3",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 20,
			Burst:             5,
			MaxRetries:        5,
			RetryBaseDelay:    time.Second,
			CacheEnabled:      false,
			CacheTTL:          7 * 24 * time.Hour,
		},
		Enrich: EnrichConfig{
			InputPath:  "data/movies.dat",
			OutputPath: "data/enriched_movies.csv",
			Workers:    4,
			Locale:     "zh-CN",
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path ("" skips the file layer).
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// TMDB_API_KEY -> tmdb.api_key
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processWeightFields(k); err != nil {
		return nil, fmt.Errorf("failed to process weight fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated environment values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

var weightConfigPaths = []string{
	"recommend.text_weights",
	"recommend.numeric_weights",
}

// processWeightFields parses "name=weight,name=weight" environment values.
// Declaration order is kept because it is the summation order.
func processWeightFields(k *koanf.Koanf) error {
	for _, path := range weightConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		weights, err := ParseWeights(strVal)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		entries := make([]interface{}, len(weights))
		for i, w := range weights {
			entries[i] = map[string]interface{}{"name": w.Name, "weight": w.Weight}
		}
		if err := k.Set(path, entries); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// ParseWeights parses "genres=0.2,keywords=0.15" into weights. An empty
// string yields no weights.
func ParseWeights(s string) ([]WeightConfig, error) {
	var out []WeightConfig
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("weight %q must be name=value", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", pair, err)
		}
		out = append(out, WeightConfig{Name: strings.TrimSpace(name), Weight: w})
	}
	return out, nil
}

// envMappings maps environment variable names (lower-cased) to config paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_request_timeout":  "server.request_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"movies_path":    "dataset.movies_path",
	"ratings_path":   "dataset.ratings_path",
	"ratings_format": "dataset.ratings_format",
	"catalog_path":   "dataset.catalog_path",

	"recommend_text_weights":           "recommend.text_weights",
	"recommend_numeric_weights":        "recommend.numeric_weights",
	"recommend_min_rating_count":       "recommend.min_rating_count",
	"recommend_merge_policy":           "recommend.merge_policy",
	"recommend_neighbors":              "recommend.neighbors",
	"recommend_content_weight":         "recommend.content_weight",
	"recommend_default_n":              "recommend.default_n",
	"recommend_max_n":                  "recommend.max_n",
	"recommend_content_fetch_factor":   "recommend.content_fetch_factor",
	"recommend_min_rating":             "recommend.min_rating",
	"recommend_min_votes":              "recommend.min_votes",
	"recommend_title_cutoff":           "recommend.title_cutoff",
	"recommend_title_matches":          "recommend.title_matches",
	"recommend_alternate_search_below": "recommend.alternate_search_below",
	"recommend_rebuild_interval":       "recommend.rebuild_interval",
	"recommend_result_cache_size":      "recommend.result_cache_size",

	"tmdb_enabled":             "tmdb.enabled",
	"tmdb_base_url":            "tmdb.base_url",
	"tmdb_api_key":             "tmdb.api_key",
	"tmdb_timeout":             "tmdb.timeout",
	"tmdb_requests_per_second": "tmdb.requests_per_second",
	"tmdb_burst":               "tmdb.burst",
	"tmdb_max_retries":         "tmdb.max_retries",
	"tmdb_retry_base_delay":    "tmdb.retry_base_delay",
	"tmdb_cache_enabled":       "tmdb.cache_enabled",
	"tmdb_cache_path":          "tmdb.cache_path",
	"tmdb_cache_ttl":           "tmdb.cache_ttl",

	"enrich_input_path":  "enrich.input_path",
	"enrich_output_path": "enrich.output_path",
	"enrich_workers":     "enrich.workers",
	"enrich_locale":      "enrich.locale",
}

// envTransformFunc maps an environment variable to its koanf path, or ""
// to skip it.
//
// Examples:
//   - TMDB_API_KEY -> tmdb.api_key
//   - HTTP_PORT -> server.port
//   - RECOMMEND_CONTENT_WEIGHT -> recommend.content_weight
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
