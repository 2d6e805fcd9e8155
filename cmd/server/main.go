// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/affinity/internal/api"
	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/database"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/supervisor"
	"github.com/tomtom215/affinity/internal/supervisor/services"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("version", Version).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("wal_enabled", cfg.WAL.Enabled).
		Msg("Starting Affinity with supervisor tree")

	metrics.AppInfo.WithLabelValues(Version, runtime.Version()).Set(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	rc, err := initRecommend(ctx, cfg, db, logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}
	tree.AddMessagingService(rc.Service)

	ingest, err := initIngest(cfg, db, tree, logging.WithComponent("ingest"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize ingest pipeline")
	}
	defer func() {
		if err := ingest.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing ingest pipeline")
		}
	}()

	deps := api.Deps{
		Engine:   rc.Engine,
		Catalog:  db,
		Ingestor: ingest.Ingestor,
		WAL:      ingest.WAL,
		Config:   cfg,
		Logger:   logging.Logger(),
	}
	if ingest.Publisher != nil {
		deps.Publisher = ingest.Publisher
	}
	handler, err := api.NewHandler(deps)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}
	handler.SetTrainContext(ctx)

	server, err := initHTTP(cfg, handler, logging.WithComponent("http"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize HTTP server")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	go trackUptime(ctx, time.Now())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		cancel()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// trackUptime refreshes the uptime gauge until ctx is done.
func trackUptime(ctx context.Context, start time.Time) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.AppUptime.Set(time.Since(start).Seconds())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
