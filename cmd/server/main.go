/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave ledger server. Handles configuration,
  dependency construction, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment
  2. Open the channel store (bolt or sqlite)
  3. Load the ledger (seeds default holidays on first run)
  4. Construct the advisor client if a credential is configured
  5. Start the HTTP server with graceful shutdown

CONFIGURATION (environment):
  PORT               HTTP server port (default: 8080)
  DB_DRIVER          "bolt" or "sqlite" (default: bolt)
  DB_PATH            Database file path (default: leave.db)
  VACATION_QUOTA     Annual vacation allowance (default: 20)
  SICK_QUOTA         Annual sick allowance (default: 14)
  QUOTA_ENFORCEMENT  "warn" or "block" (default: warn)
  GEMINI_API_KEY     Advisor credential; empty disables the advice feature
  GEMINI_MODEL       Advisor model override
  GEMINI_BASE_URL    Advisor endpoint override (testing)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - ledger/ledger.go: State loading and seeding
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/leave-ledger/advisor"
	"github.com/warp/leave-ledger/api"
	"github.com/warp/leave-ledger/config"
	"github.com/warp/leave-ledger/ledger"
	boltstore "github.com/warp/leave-ledger/store/bolt"
	sqlitestore "github.com/warp/leave-ledger/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Channel store
	var store ledger.Store
	switch cfg.DBDriver {
	case "sqlite":
		store, err = sqlitestore.New(cfg.DBPath)
	default:
		store, err = boltstore.New(cfg.DBPath)
	}
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer store.Close()

	// Ledger (loads both channels, seeds holidays on first run)
	l, err := ledger.New(context.Background(), store, ledger.QuotaTotals{
		ledger.LeaveVacation: cfg.VacationQuota,
		ledger.LeaveSick:     cfg.SickQuota,
	}, logger)
	if err != nil {
		logger.Fatal("failed to load ledger", zap.Error(err))
	}

	// Advisor is optional: no credential means the feature is disabled, not
	// that startup fails.
	var advisorClient *advisor.Client
	if cfg.GeminiAPIKey != "" {
		advisorClient, err = advisor.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Fatal("failed to build advisor client", zap.Error(err))
		}
		logger.Info("advisor enabled")
	} else {
		logger.Info("advisor disabled: no GEMINI_API_KEY configured")
	}

	handler := api.NewHandler(l, advisorClient, cfg.QuotaEnforcement, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // the advisor call may take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("driver", cfg.DBDriver),
			zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}
