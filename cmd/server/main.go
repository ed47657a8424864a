// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

// Command server runs the creator analytics sync service: the HTTP API,
// the periodic sync scheduler and the DuckDB analytics store, all under a
// Suture supervision tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/api"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/config"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/database"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/insights"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/scheduler"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/supervisor"
	syncpkg "github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/sync"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/tokenvault"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting sync service")

	db, err := database.New(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() { _ = db.Close() }()

	// Upstream clients ride behind circuit breakers so a platform outage
	// degrades runs to partial instead of hammering a dead API.
	ytClient := upstream.NewBreakerYouTubeClient(upstream.NewYouTubeClient(cfg.YouTube))
	igClient := upstream.NewBreakerInstagramClient(upstream.NewInstagramClient(cfg.Instagram))

	vault := tokenvault.New(db, cfg.Google, cfg.Sync.TokenExpiryMargin)
	trigger := insights.New(cfg.Insights)
	orch := syncpkg.NewOrchestrator(db, vault, ytClient, igClient, trigger, cfg.Sync)

	handler := api.NewHandler(db, orch, db, cfg.API)
	router := api.NewRouter(handler, cfg)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.Timeout))
	if cfg.Sync.SchedulerEnabled {
		tree.AddWorker(scheduler.New(db, orch, cfg.Sync.SchedulerInterval))
	} else {
		logging.Info().Msg("Periodic scheduler disabled, syncs run on demand only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervisor tree exited")
	}
	logging.Info().Msg("Shutdown complete")
}
