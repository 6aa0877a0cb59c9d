package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/feldzeit/geoattend/internal/api"
	"github.com/feldzeit/geoattend/internal/config"
	"github.com/feldzeit/geoattend/internal/domain/telemetry"
	"github.com/feldzeit/geoattend/internal/domain/tracking"
	"github.com/feldzeit/geoattend/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	sessionRepo := sqlite.NewSessionRepository(db)
	eventRepo := sqlite.NewEventRepository(db)

	trackingSvc := tracking.NewService(
		sessionRepo,
		eventRepo,
		nil, // position fetch is supplied by the host platform
		tracking.NewLogNotifier(logger),
		thresholds(cfg.Tracking),
		logger,
	)
	telemetrySvc := telemetry.NewService(sessionRepo, eventRepo, logger)

	// Sweep sessions left pending while the process was down.
	confirmed, err := trackingSvc.Reconcile(context.Background(), time.Now())
	if err != nil {
		logger.Error("startup reconcile failed", "error", err)
		os.Exit(1)
	}
	if confirmed > 0 {
		logger.Info("startup reconcile confirmed stale sessions", "count", confirmed)
	}

	handler := api.NewHandler(trackingSvc, telemetrySvc, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler.Routes(),
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func thresholds(cfg config.TrackingConfig) tracking.Thresholds {
	return tracking.Thresholds{
		DebounceWindow:       time.Duration(cfg.DebounceWindow),
		ImmediateThresholdM:  cfg.ImmediateThresholdM,
		PoorThresholdM:       cfg.PoorThresholdM,
		DegradationFactor:    cfg.DegradationFactor,
		HysteresisWindow:     time.Duration(cfg.HysteresisWindow),
		StaleThreshold:       time.Duration(cfg.StaleThreshold),
		PositionFetchTimeout: time.Duration(cfg.PositionFetchTimeout),
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
