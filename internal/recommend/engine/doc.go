// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package engine assembles the recommenders into a queryable snapshot and
serves it.

A Snapshot is built once from the enriched movie table, the ratings and the
ratings-side catalog. It holds the feature store, the content similarity
engine, the rating matrix, the neighbor index and both identity resolvers,
and never changes afterwards, so any number of goroutines may query it.

Engine owns the current snapshot. Rebuild loads fresh input, builds a new
snapshot next to the serving one and swaps it in atomically; a rebuild
that fails leaves the previous snapshot in place. Only one rebuild runs at
a time.

Query modes:

  - Content: resolve a free-text title through the metadata service, then
    rank catalog rows by weighted feature similarity.
  - Collaborative: rank items whose rating vectors are nearest to a given
    item.
  - Hybrid: blend both rankings by item id with an adjustable content weight.

Results are cached per snapshot version in a bounded LRU.
*/
package engine
