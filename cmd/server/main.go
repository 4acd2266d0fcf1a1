// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/bookwise/internal/api"
	"github.com/tomtom215/bookwise/internal/auth"
	"github.com/tomtom215/bookwise/internal/config"
	"github.com/tomtom215/bookwise/internal/database"
	"github.com/tomtom215/bookwise/internal/logging"
	"github.com/tomtom215/bookwise/internal/supervisor"
	"github.com/tomtom215/bookwise/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
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
	logging.Info().Str("environment", cfg.Server.Environment).Msg("Starting Bookwise")

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoData(ctx); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	logger := logging.Logger()
	rec, err := initRecommend(cfg, db, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing offer cache")
		}
	}()

	authMiddleware, err := initAuth(&cfg.Security)
	if err != nil {
		return err
	}

	var offerLookup api.OfferLookup
	if rec.Offers != nil {
		offerLookup = rec.Offers
	}
	handler := api.NewHandler(rec.Engine, db, offerLookup)
	router := api.NewRouter(handler, authMiddleware, api.ChiMiddlewareConfigFromSecurity(&cfg.Security), logger)
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	if cfg.Recommend.CacheEnabled {
		tree.AddDataService(services.NewCacheJanitorService(rec.Engine, cfg.Recommend.CacheCleanupInterval, logger))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)
	err = <-errCh
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}

// initAuth builds the authentication middleware for the configured mode.
func initAuth(sec *config.SecurityConfig) (*auth.Middleware, error) {
	if sec.AuthMode == auth.ModeNone {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  The caller is identified by the X-User-ID header.")
		logging.Warn().Msg("  Use this mode only for local development.")
		logging.Warn().Msg("============================================================")
		return auth.NewMiddleware(nil, auth.ModeNone, api.WriteError), nil
	}

	jwtManager, err := auth.NewJWTManager(sec)
	if err != nil {
		return nil, fmt.Errorf("initialize JWT manager: %w", err)
	}
	logging.Info().Msg("JWT authentication enabled")
	return auth.NewMiddleware(jwtManager, auth.ModeJWT, api.WriteError), nil
}
