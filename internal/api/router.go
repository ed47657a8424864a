// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Package api exposes the HTTP surface: the sync trigger, read-side
// analytics queries, health and Prometheus metrics.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
)

// NewRouter builds the chi router with middleware and all routes mounted.
func NewRouter(h *Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)
	r.Use(middleware.Timeout(cfg.Server.Timeout))

	if len(cfg.Security.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Security.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if cfg.Security.RateLimitReqs > 0 {
		window := cfg.Security.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(cfg.Security.RateLimitReqs, window))
	}

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})
		r.Post("/sync", h.Sync)
		r.Route("/accounts/{accountID}", func(r chi.Router) {
			r.Get("/overview", h.AccountOverview)
			r.Get("/metrics/daily", h.DailyMetrics)
			r.Get("/content", h.AccountContent)
		})
		r.Get("/content/{contentID}/comments", h.ContentComments)
	})

	return r
}
