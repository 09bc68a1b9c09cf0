// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig().Validate() error = %v", err)
	}

	engine, err := cfg.Recommend.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig() error = %v", err)
	}
	if math.Abs(engine.WeightSum()-1.0) > 1e-9 {
		t.Errorf("WeightSum() = %v, want 1.0", engine.WeightSum())
	}
	if got := *engine.HybridFilter.MinRating; got != 7.0 {
		t.Errorf("HybridFilter.MinRating = %v, want 7.0", got)
	}
	if got := *engine.HybridFilter.MinVotes; got != 1000 {
		t.Errorf("HybridFilter.MinVotes = %v, want 1000", got)
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("TMDB.BaseURL = %q", cfg.TMDB.BaseURL)
	}
}

func TestEngineConfig_ZeroThresholdsDisableFilter(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommend.MinRating = 0
	cfg.Recommend.MinVotes = 0

	engine, err := cfg.Recommend.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig() error = %v", err)
	}
	if engine.HybridFilter.MinRating != nil || engine.HybridFilter.MinVotes != nil {
		t.Errorf("HybridFilter = %+v, want no thresholds", engine.HybridFilter)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"TMDB_API_KEY":             "tmdb.api_key",
		"HTTP_PORT":                "server.port",
		"RECOMMEND_CONTENT_WEIGHT": "recommend.content_weight",
		"LOG_LEVEL":                "logging.level",
		"HOME":                     "",
		"PATH":                     "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseWeights(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []WeightConfig
		wantErr bool
	}{
		{name: "empty", in: "", want: nil},
		{name: "ordered pairs", in: "genres=0.5, overview=0.5", want: []WeightConfig{{"genres", 0.5}, {"overview", 0.5}}},
		{name: "missing equals", in: "genres", wantErr: true},
		{name: "bad number", in: "genres=lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeights(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeights() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseWeights() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseWeights()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RECOMMEND_CONTENT_WEIGHT", "0.6")
	t.Setenv("RECOMMEND_REBUILD_INTERVAL", "1h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RECOMMEND_TEXT_WEIGHTS", "genres=0.6,overview=0.2")
	t.Setenv("RECOMMEND_NUMERIC_WEIGHTS", "vote_average=0.2")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Recommend.ContentWeight != 0.6 {
		t.Errorf("ContentWeight = %v, want 0.6", cfg.Recommend.ContentWeight)
	}
	if cfg.Recommend.RebuildInterval != time.Hour {
		t.Errorf("RebuildInterval = %v, want 1h", cfg.Recommend.RebuildInterval)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if len(cfg.Recommend.TextWeights) != 2 || cfg.Recommend.TextWeights[0].Name != recommend.FeatureGenres {
		t.Errorf("TextWeights = %v", cfg.Recommend.TextWeights)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 7000
dataset:
  movies_path: /srv/movies.csv
  ratings_path: /srv/ratings.csv
  ratings_format: csv
recommend:
  neighbors: 25
  merge_policy: average
tmdb:
  enabled: true
  api_key: secret
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.Dataset.RatingsFormat != "csv" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Recommend.Neighbors != 25 || cfg.Recommend.MergePolicy != recommend.MergeAverage {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if !cfg.TMDB.Enabled || cfg.TMDB.APIKey != "secret" {
		t.Errorf("TMDB = %+v", cfg.TMDB)
	}
	// Untouched sections keep their defaults.
	if cfg.Recommend.MinRatingCount != 10 {
		t.Errorf("MinRatingCount = %d, want default 10", cfg.Recommend.MinRatingCount)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name: "weights do not sum to one",
			mutate: func(c *Config) {
				c.Recommend.TextWeights[0].Weight = 0.5
			},
			wantErr: recommend.ErrConfiguration,
		},
		{
			name: "unknown merge policy",
			mutate: func(c *Config) {
				c.Recommend.MergePolicy = "sum"
			},
		},
		{
			name: "content weight out of range",
			mutate: func(c *Config) {
				c.Recommend.ContentWeight = 1.5
			},
		},
		{
			name: "tmdb enabled without key",
			mutate: func(c *Config) {
				c.TMDB.Enabled = true
			},
		},
		{
			name: "tmdb base url with query",
			mutate: func(c *Config) {
				c.TMDB.BaseURL = "https://api.themoviedb.org/3?x=1"
			},
		},
		{
			name: "max_n below default_n",
			mutate: func(c *Config) {
				c.Recommend.MaxN = 2
			},
		},
		{
			name: "bad enrich locale",
			mutate: func(c *Config) {
				c.Enrich.Locale = "chinese"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.name == "defaults" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFindConfigFile_EnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8081\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}
