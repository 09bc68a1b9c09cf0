// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package middleware provides the HTTP middleware shared by every API route.

Key Components:

  - RequestID: UUID request ids, echoed in X-Request-ID and carried in the
    logging context together with a fresh correlation id
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by the chi route pattern so path parameters never become label values

Both take and return http.Handler and mount directly on a chi router:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Handlers read the id through the logging package:

	logging.Ctx(r.Context()).Info().Msg("Recommendation served")
*/
package middleware
