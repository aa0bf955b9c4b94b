// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Bookshelf HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from the environment (and .env when present).
//  3. Choose the cover store (memory, or Redis).
//  4. Start the session manager and its janitor.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/bookshelf/internal/api"
	"github.com/taibuivan/bookshelf/internal/core/catalog"
	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/internal/platform/config"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	redisstore "github.com/taibuivan/bookshelf/internal/platform/redis"
	"github.com/taibuivan/bookshelf/internal/render"
	"github.com/taibuivan/bookshelf/internal/session"
	"github.com/taibuivan/bookshelf/internal/web"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("cover_store", cfg.CoverStore),
		slog.String("locale", cfg.Locale),
	)

	// Root context lives until SIGINT/SIGTERM and drives background goroutines.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Cover Store ────────────────────────────────────────────────────
	var (
		covers      cover.Store
		checkCovers func() error
	)
	switch cfg.CoverStore {
	case config.CoverStoreRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		covers = cover.NewRedisStore(rdb, cfg.CoverTTL)
		checkCovers = func() error { return redisstore.Ping(context.Background(), rdb) }
	default:
		covers = cover.NewMemoryStore()
	}

	// ── 4. Sessions ───────────────────────────────────────────────────────
	templates, err := render.LoadTemplates()
	must(log, err, "parse templates")

	tag := cfg.LanguageTag()
	sessions := session.NewManager(cfg.SessionIdleTTL, func(id string) *session.Workspace {
		return session.NewWorkspace(id, tag, templates, log)
	}, log)
	go sessions.Run(rootCtx, constants.SessionSweepInterval)

	// ── 5. Handlers ───────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckCoverStore: checkCovers,
	}, log)

	catalogService := catalog.NewService(covers, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Pages:     web.NewHandler(catalogService, templates, cfg.MaxCoverBytes),
		Books:     catalog.NewHandler(catalogService, session.Resolve, cfg.MaxCoverBytes),
		Covers:    cover.NewHandler(covers),
	}

	server := api.NewServer(rootCtx, cfg, log, sessions, handlers)

	// ── 6. Graceful Shutdown ──────────────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	exitCode := 0
	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		exitCode = 1
	}

	// Every remaining catalog releases its covers before the store goes away
	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	if err := sessions.Close(closeCtx); err != nil {
		log.Warn("sessions_close_failed", slog.Any("error", err))
	}

	if exitCode != 0 {
		stop()
		os.Exit(exitCode)
	}
	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger every component shares.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
