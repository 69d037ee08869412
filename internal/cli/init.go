// Package cli provides the initialization shared by cmd/fintrack and
// cmd/fintrack-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// SetupLogger builds the process logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads .env, then the configuration, and validates it.
func LoadConfig() (*config.Config, error) {
	LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App bundles what every command needs once the configuration is loaded.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Backend *backend.BackendResult
	Service *services.LedgerService
}

// Bootstrap loads the configuration, opens the store and loads the ledger.
func Bootstrap(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := SetupLogger(cfg)
	return NewApp(ctx, cfg, logger, backend.NewFactory(logger))
}

// NewApp wires an App from an already loaded configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger, factory backend.Factory) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	svc, err := services.NewLedgerService(ctx, res.Store, res.Publisher(), logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("initialize ledger: %w", err), res.Cleanup())
	}
	svc.ResizeOverviewCache(cfg.CacheSize, cfg.CacheTTL)
	return &App{Config: cfg, Logger: logger, Backend: res, Service: svc}, nil
}

// Close releases the store and the event client.
func (a *App) Close() error {
	return a.Service.Close()
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		logger.Info("Shutdown complete")
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
