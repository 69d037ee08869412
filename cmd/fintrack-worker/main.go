// Command fintrack-worker exports month reports. It re-exports a month when a
// ledger event names it and refreshes the current month on a timer.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentWorker)
	logger.Info("Starting fintrack-worker", "backend", cfg.DataBackend, "interval", cfg.ExportInterval)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	factory := backend.NewFactory(logger)
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := factory.CreateBackend(startCtx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err)
		}
	}()

	writer, err := factory.CreateReportWriter(startCtx, bcfg)
	if err != nil {
		return err
	}

	exporter := worker.NewExportWorker(res.Store, writer, logger)
	scheduler := worker.NewScheduler(exporter, cfg.ExportInterval, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Scheduler stop failed", log.FieldError, err)
		}
	})

	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	if res.Events != nil {
		go func() {
			err := res.Events.Consume(ctx, exporter.HandleEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Event consumption failed", log.FieldError, err)
			}
		}()
	} else {
		logger.Info("Events disabled, relying on periodic export only")
	}

	cli.WaitForShutdown(ctx, done)
	return nil
}
