package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rgordeev/payout-sync/internal/config"
	"github.com/rgordeev/payout-sync/internal/database"
	"github.com/rgordeev/payout-sync/internal/platform"
	"github.com/rgordeev/payout-sync/internal/poller"
	"github.com/rgordeev/payout-sync/internal/store"
	"github.com/rgordeev/payout-sync/internal/syncer"
	"github.com/rgordeev/payout-sync/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/syncd.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting syncd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"platform_url", cfg.Platform.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Wire the pipeline: store -> platform client -> processor -> poll loop
	st := store.New(pool, logger)

	client := platform.NewClient(
		cfg.Platform.BaseURL,
		platform.WithLogger(logger),
		platform.WithTimeout(cfg.Platform.Timeout),
		platform.WithRateLimitRetry(cfg.Platform.MaxAttempts, cfg.Platform.BaseBackoff),
	)

	processor := syncer.New(syncer.Config{
		DefaultPages: cfg.Fetch.DefaultPages,
		PageDelay:    cfg.Fetch.PageDelay,
	}, st, client, logger)

	loop := poller.New(poller.Config{
		Interval: cfg.Poller.Interval,
	}, st, processor, logger)

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(cfg.Health.Path, pool, loop),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	if err := loop.Start(ctx); err != nil {
		logger.Error("failed to start poll loop", "error", err)
		os.Exit(1)
	}

	logger.Info("syncd running",
		"instance_id", cfg.Instance.ID,
		"poll_interval", cfg.Poller.Interval,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Let the in-flight order drain within the grace window
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Poller.StopGrace)
	defer shutdownCancel()

	if err := loop.Stop(shutdownCtx); err != nil {
		logger.Warn("poll loop did not drain in time", "error", err)
	}
	healthServer.Shutdown(shutdownCtx)

	logger.Info("syncd stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(path string, pool *pgxpool.Pool, loop *poller.Poller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    string         `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.String(),
			Components: make(map[string]any),
		}

		// Check database
		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		// Check poll loop progress
		stats := loop.Stats()
		health.Components["poller"] = map[string]any{
			"cycles":           stats.Cycles,
			"orders_processed": stats.OrdersProcessed,
			"order_errors":     stats.OrderErrors,
			"last_cycle_at":    stats.LastCycleAt,
		}
		if stats.Cycles == 0 {
			health.Status = "degraded"
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
