// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// maxErrorBodySize caps how much of an error response is read.
const maxErrorBodySize = 64 * 1024

// maxResponseSize caps successful response bodies.
const maxResponseSize = 8 << 20

// Endpoint labels used in metrics and errors.
const (
	endpointSearch        = "search"
	endpointDetails       = "details"
	endpointConfiguration = "configuration"
)

var (
	// ErrInvalidAPIKey is returned when the service answers 401.
	ErrInvalidAPIKey = fmt.Errorf("%w: invalid api key", recommend.ErrExternalService)

	// ErrNotFound is returned when the service answers 404.
	ErrNotFound = fmt.Errorf("%w: not found", recommend.ErrExternalService)
)

// API is the metadata service surface used by the resolver and the enricher.
// Client and CircuitBreakerClient implement it.
type API interface {
	SearchMovie(ctx context.Context, title, locale string, year int) ([]SearchResult, error)
	MovieDetails(ctx context.Context, id int64, locale string, withCredits, withKeywords bool) (*MovieDetails, error)
	ValidateKey(ctx context.Context) error
}

// Client talks to the TMDB v3 HTTP API.
//
// Requests are paced by a token bucket and retried with exponential backoff
// (1s, 2s, 4s, ...) on HTTP 429, honoring Retry-After. Successful GETs are
// served from the optional ResponseCache. Every failure wraps
// recommend.ErrExternalService.
//
// Safe for concurrent use.
type Client struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	limiter        *rate.Limiter
	cache          *ResponseCache
	maxRetries     int
	retryBaseDelay time.Duration
	logger         zerolog.Logger
}

// NewClient creates a client from cfg. cache may be nil.
func NewClient(cfg *config.TMDBConfig, cache *ResponseCache) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cache:          cache,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		logger:         logging.WithComponent("tmdb"),
	}
}

// SearchMovie searches titles in locale. year <= 0 searches all years.
func (c *Client) SearchMovie(ctx context.Context, title, locale string, year int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("language", locale)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var page searchPage
	if err := c.get(ctx, endpointSearch, "/search/movie", params, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// MovieDetails fetches one movie, optionally with credits and keywords
// appended in the same request.
func (c *Client) MovieDetails(ctx context.Context, id int64, locale string, withCredits, withKeywords bool) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("language", locale)

	var appends []string
	if withCredits {
		appends = append(appends, "credits")
	}
	if withKeywords {
		appends = append(appends, "keywords")
	}
	if len(appends) > 0 {
		params.Set("append_to_response", strings.Join(appends, ","))
	}

	var details MovieDetails
	path := "/movie/" + strconv.FormatInt(id, 10)
	if err := c.get(ctx, endpointDetails, path, params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// ValidateKey checks the API key against /configuration. A rejected key
// returns ErrInvalidAPIKey.
func (c *Client) ValidateKey(ctx context.Context) error {
	resp, err := c.fetch(ctx, endpointConfiguration, "/configuration", url.Values{})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
	return nil
}

// get performs a cached GET and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, result interface{}) error {
	cacheKey := path + "?" + params.Encode()

	if c.cache != nil {
		if data, ok := c.cache.Get(cacheKey); ok {
			metrics.RecordCacheLookup("tmdb", true)
			if err := json.Unmarshal(data, result); err == nil {
				return nil
			}
			c.logger.Warn().Str("key", cacheKey).Msg("Discarding undecodable cached response")
		} else {
			metrics.RecordCacheLookup("tmdb", false)
		}
	}

	resp, err := c.fetch(ctx, endpoint, path, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %w", recommend.ErrExternalService, endpoint, err)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", recommend.ErrExternalService, endpoint, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, data); err != nil {
			c.logger.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache response")
		}
	}
	return nil
}

// fetch performs the request and maps non-200 statuses to errors. On
// success the caller owns resp.Body.
func (c *Client) fetch(ctx context.Context, endpoint, path string, params url.Values) (*http.Response, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + query.Encode()

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		metrics.RecordTMDBRequest(endpoint, "error", time.Since(start))
		return nil, fmt.Errorf("%w: %s request: %w", recommend.ErrExternalService, endpoint, err)
	}
	metrics.RecordTMDBRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusUnauthorized:
		_ = resp.Body.Close()
		return nil, ErrInvalidAPIKey
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w", endpoint, path, ErrNotFound)
	default:
		body := readBodyForError(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s request failed with status %d: %s",
			recommend.ErrExternalService, endpoint, resp.StatusCode, string(body))
	}
}

// doRequestWithRateLimit waits for the limiter, sends the request and
// retries HTTP 429 with exponential backoff. The context cancels both the
// limiter wait and the backoff sleep.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", redactURLError(err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", redactURLError(err))
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()
		metrics.TMDBRateLimitHits.Inc()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		c.logger.Debug().Int("attempt", attempt+1).Dur("delay", delay).Msg("Rate limited, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// redactURLError strips the query string, which carries the API key, from
// *url.Error values produced by the HTTP client.
func redactURLError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	if i := strings.IndexByte(ue.URL, '?'); i >= 0 {
		redacted := *ue
		redacted.URL = ue.URL[:i]
		return &redacted
	}
	return err
}
