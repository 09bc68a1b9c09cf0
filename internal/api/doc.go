// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package api provides the HTTP interface of the recommendation engine.

Routes (Chi router):

	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /api/v1/recommendations/content?q=&n=&min_rating=&min_votes=
	GET  /api/v1/recommendations/collaborative?q=&n=&min_rating=
	GET  /api/v1/recommendations/collaborative/{itemID}?n=&min_rating=
	GET  /api/v1/recommendations/hybrid?q=&n=&content_weight=&min_rating=&min_votes=
	PUT  /api/v1/recommendations/weights
	GET  /api/v1/movies/{itemID}/stats
	GET  /api/v1/titles/search?q=&n=
	GET  /api/v1/snapshot
	POST /api/v1/snapshot/rebuild
	GET  /metrics

Every JSON response uses one envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "query_time_ms": 3, "snapshot_version": 2}
	}

Errors carry a machine-readable code:

	{
	  "status": "error",
	  "data": null,
	  "metadata": {"timestamp": "..."},
	  "error": {"code": "UNKNOWN_ITEM", "message": "..."}
	}

Engine errors map onto status codes with errors.Is: invalid weight and
request validation give 400, unknown item 404, a rebuild already running
409, a failing metadata service 502, and no snapshot yet 503.

Middleware order: request id, real IP, recoverer, metrics, security
headers, CORS, rate limit (per client IP, httprate), request timeout.
*/
package api
