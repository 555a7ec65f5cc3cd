// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package main is the entry point for the ReelTrack server.
//
// ReelTrack tracks a personal media library (watches, likes, ratings) and
// serves cached recommendation, behavior and stats bundles that never block
// an interactive page on full recomputation.
//
// Startup order:
//
//  1. Configuration: Koanf v2 layering (defaults, config.yaml, REELTRACK_* env)
//  2. Logging: zerolog global logger
//  3. Store: embedded DuckDB (interactions, ratings, cached bundles)
//  4. Catalog client: rate-limited, circuit-broken discovery API client
//  5. Event bus: in-process Watermill channel linking writes to staleness
//  6. Supervision tree: refresh scheduler, mutation subscriber, HTTP server
//
// Shutdown on SIGINT/SIGTERM drains in-flight requests and background
// regenerations before closing the store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/reeltrack/reeltrack/internal/api"
	"github.com/reeltrack/reeltrack/internal/cache"
	"github.com/reeltrack/reeltrack/internal/catalog"
	"github.com/reeltrack/reeltrack/internal/config"
	"github.com/reeltrack/reeltrack/internal/events"
	"github.com/reeltrack/reeltrack/internal/logging"
	"github.com/reeltrack/reeltrack/internal/recommend"
	"github.com/reeltrack/reeltrack/internal/store"
	"github.com/reeltrack/reeltrack/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reeltrack: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).Msg("starting reeltrack")

	st, err := store.NewDuckDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Warn().Err(err).Msg("store close failed")
		}
	}()

	catalogClient := catalog.NewHTTPClient(cfg.Catalog)
	engine := recommend.NewEngine(catalogClient, cfg.Recommend, logging.Logger())

	scheduler := cache.NewAsyncScheduler()
	coordinator := cache.NewCoordinator(st, engine, scheduler, cfg.Cache.TTL)

	bus := events.NewBus(logging.Logger())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("event bus close failed")
		}
	}()
	publisher := events.NewPublisher(bus)
	subscriber := events.NewSubscriber(bus, coordinator)

	handler := api.NewHandler(coordinator, st, publisher)
	router := api.NewRouter(handler, cfg.API)

	treeCfg := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(treeCfg)
	tree.AddBackgroundService(scheduler)
	tree.AddBackgroundService(subscriber)
	tree.AddAPIService(supervisor.NewHTTPServer(cfg.Server, router, treeCfg.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervision tree: %w", err)
	}
	logging.Info().Msg("shutdown complete")
	return nil
}
