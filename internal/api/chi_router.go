// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelmatch/internal/middleware"
)

// Router wires handlers and middleware into a Chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. cfg may be nil for defaults.
func NewRouter(handler *Handler, cfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to ALL routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		// Rebuilds can outlast the request timeout.
		r.Post("/api/v1/snapshot/rebuild", router.handler.RebuildSnapshot)

		r.Group(func(r chi.Router) {
			if t := router.chiMiddleware.config.RequestTimeout; t > 0 {
				r.Use(chimiddleware.Timeout(t))
			}

			r.Route("/api/v1/recommendations", func(r chi.Router) {
				r.Get("/content", router.handler.ContentRecommendations)
				r.Get("/collaborative", router.handler.CollaborativeSearch)
				r.Get("/collaborative/{itemID}", router.handler.CollaborativeRecommendations)
				r.Get("/hybrid", router.handler.HybridRecommendations)
				r.Get("/weights", router.handler.GetWeights)
				r.Put("/weights", router.handler.AdjustWeights)
			})

			r.Get("/api/v1/movies/{itemID}/stats", router.handler.MovieStats)
			r.Get("/api/v1/titles/search", router.handler.SearchTitles)
			r.Get("/api/v1/snapshot", router.handler.SnapshotInfo)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
