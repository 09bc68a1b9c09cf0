// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package tmdb

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for BadgerDB storage.
const responseKeyPrefix = "tmdb:"

// ResponseCache stores raw metadata responses in BadgerDB with a TTL, so
// re-running the enricher or restarting the server does not spend the
// request quota again.
type ResponseCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenResponseCache opens (or creates) a cache at path. An empty path keeps
// the cache in memory for the life of the process.
func OpenResponseCache(path string, ttl time.Duration) (*ResponseCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	opts.ValueLogFileSize = 64 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for tmdb cache: %w", err)
	}
	return &ResponseCache{db: db, ttl: ttl}, nil
}

// Get returns the cached body for key. Expired entries are invisible.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(responseKeyPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores body under key for the cache TTL.
func (c *ResponseCache) Set(key string, body []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(responseKeyPrefix+key), body)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes key. A missing key is not an error.
func (c *ResponseCache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(responseKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Close releases the database.
func (c *ResponseCache) Close() error {
	return c.db.Close()
}
