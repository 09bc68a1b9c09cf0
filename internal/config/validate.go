// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/reelmatch/internal/validation"
)

// Validate checks struct tags first, then the cross-field rules tags cannot
// express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if _, err := c.Recommend.EngineConfig(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if c.Recommend.MaxN < c.Recommend.DefaultN {
		return fmt.Errorf("recommend: max_n (%d) must be >= default_n (%d)", c.Recommend.MaxN, c.Recommend.DefaultN)
	}

	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server: rate_limit_window must be positive when rate limiting is enabled")
	}

	return c.validateTMDB()
}

func (c *Config) validateTMDB() error {
	if err := validateHTTPURL(c.TMDB.BaseURL, "tmdb.base_url"); err != nil {
		return err
	}
	if c.TMDB.Enabled && strings.TrimSpace(c.TMDB.APIKey) == "" {
		return fmt.Errorf("tmdb: api_key is required when tmdb is enabled (set TMDB_API_KEY)")
	}
	return nil
}

// validateHTTPURL requires an http(s) URL with a host and no query string.
// A path is allowed because the metadata API is versioned by path.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
