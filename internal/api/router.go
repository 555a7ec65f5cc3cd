// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reeltrack/reeltrack/internal/config"
)

// NewRouter wires the chi router: global middleware, health and metrics,
// then the rate-limited user endpoints.
func NewRouter(h *Handler, cfg config.APIConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/api/v1/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/users/{userID}", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Use(Observe)

		r.Get("/recommendations", h.Recommendations)
		r.Get("/profile", h.Profile)
		r.Get("/stats", h.Stats)
		r.Get("/history", h.History)

		r.Post("/interactions", h.UpsertInteraction)
		r.Post("/ratings", h.UpsertRating)
		r.Delete("/cache", h.InvalidateCache)
	})

	return r
}
