// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package main is the ReelMatch recommendation server.

ReelMatch answers "movies like this one" from two directions: content
similarity over an enriched movie table, and item-item collaborative
filtering over user ratings. A hybrid mode blends both.

# Architecture

	RootSupervisor ("reelmatch")
	├── EngineSupervisor ("engine-layer")
	│   └── SnapshotService (initial build, periodic rebuilds)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (Chi router)

Startup order:

 1. Configuration: koanf defaults, optional config file, environment
 2. Logging: zerolog, JSON or console
 3. Dependencies: gse segmenter, optional TMDB client with BadgerDB cache
 4. Engine: dataset source and result cache; no snapshot yet
 5. Supervisor tree: the snapshot service builds the first snapshot while
    the HTTP server already answers liveness and readiness probes

Queries before the first snapshot return 503 SNAPSHOT_NOT_READY.

# Configuration

	# Dataset
	MOVIES_PATH=data/enriched_movies.csv
	RATINGS_PATH=data/ratings.dat
	RATINGS_FORMAT=auto          # auto, dat, csv
	CATALOG_PATH=data/movies.dat # optional

	# Server
	HTTP_PORT=8080
	HTTP_REQUEST_TIMEOUT=20s
	RATE_LIMIT_REQUESTS=120

	# Engine
	RECOMMEND_CONTENT_WEIGHT=0.3
	RECOMMEND_MIN_RATING_COUNT=10
	RECOMMEND_REBUILD_INTERVAL=0 # 0 builds once

	# Metadata (optional)
	TMDB_ENABLED=true
	TMDB_API_KEY=your-key
	TMDB_CACHE_ENABLED=true
	TMDB_CACHE_PATH=data/tmdb-cache

# Signals

SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight
requests for up to HTTP_SHUTDOWN_TIMEOUT.
*/
package main
