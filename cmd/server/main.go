// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/eatwhat/internal/api"
	"github.com/tomtom215/eatwhat/internal/config"
	"github.com/tomtom215/eatwhat/internal/database"
	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/recommend"
	"github.com/tomtom215/eatwhat/internal/session"
	"github.com/tomtom215/eatwhat/internal/stats"
	"github.com/tomtom215/eatwhat/internal/supervisor"
	"github.com/tomtom215/eatwhat/internal/supervisor/services"
	ws "github.com/tomtom215/eatwhat/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential wiring
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Eat-What with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedCatalog {
		if _, err := db.SeedCatalog(context.Background()); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" && cfg.IsProduction() {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*) in production")
			break
		}
	}

	hub := ws.NewHub()

	aggregator := stats.NewAggregator(db, hub)
	dispatcher, err := stats.NewDispatcher(aggregator, stats.DispatcherConfig{
		Buffer:          cfg.Stats.DispatchBuffer,
		MaxRetries:      cfg.Stats.RetryMax,
		InitialInterval: cfg.Stats.RetryInterval,
		Timeout:         cfg.Stats.DispatchTimeout,
	})
	if err != nil {
		return fmt.Errorf("create stats dispatcher: %w", err)
	}

	eligible := recommend.NewEligibleCache(db, cfg.Catalog.CacheTTL)
	selector := recommend.NewSelector(eligible, db, nil)
	sessions := session.NewService(db, dispatcher, cfg.Session.Timeout)

	handler := api.NewHandler(api.Deps{
		DB:       db,
		Eligible: eligible,
		Selector: selector,
		Sessions: sessions,
		Stats:    aggregator,
		Events:   dispatcher,
		Hub:      hub,
		Config:   cfg,
	})
	defer handler.Close()

	router := api.NewRouter(handler, api.MiddlewareConfigFrom(cfg.Security))
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(dispatcher)
	tree.AddDataService(services.NewCatalogRefreshService(eligible, 0, logging.WithComponent("catalog-refresh")))
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	if closeErr := dispatcher.Close(); closeErr != nil {
		logging.Warn().Err(closeErr).Msg("Error closing stats dispatcher")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	if ctx.Err() == nil {
		logging.Warn().Msg("Supervisor tree stopped without a shutdown signal")
	}
	return nil
}
