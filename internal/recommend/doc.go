// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend holds the shared types, configuration, error taxonomy and
// hybrid score fusion of the movie recommendation engine.
//
// # Architecture
//
// The engine blends two independent similarity signals:
//
//   - Content-based: weighted TF-IDF cosine over mixed-language text features
//     plus min-max scaled numeric attributes (subpackages textnorm, features,
//     algorithms).
//   - Collaborative: item-item cosine neighbors over a sparse item x user
//     rating matrix (subpackages ratings, algorithms).
//
// Queries enter through the identity resolver (subpackage identity), which
// maps a free-text title onto the content catalog through the metadata
// service and onto the ratings catalog through fuzzy title matching. The
// two ranked lists are fused by Combine.
//
// # Snapshots
//
// Every matrix is built once from the loaded tables by engine.Build and is
// read-only afterwards. A rebuild produces a new snapshot which replaces the
// old one atomically, so queries never observe a half-built model.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	in := engine.Input{Movies: movies, Ratings: ratings, Catalog: catalog}
//	snap, err := engine.Build(ctx, in, cfg, deps, 1, logger)
//	res, err := snap.Hybrid(ctx, "Heat", 5, cfg.ContentWeight, cfg.HybridFilter)
//
// # Errors
//
// Construction fails with ErrConfiguration. Unknown ids and metadata failures
// surface as empty or absent results from the query methods; the sentinels
// are still available to lower level callers through errors.Is.
package recommend
