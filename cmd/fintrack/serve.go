package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger as a JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := app.Config.Port
		if p, _ := cmd.Flags().GetString("port"); p != "" {
			port = p
		}
		logger := app.Logger
		srv := apphttp.NewServer(net.JoinHostPort("", port), app.Service, logger)

		caches := cache.NewManager(logger)
		caches.Register(app.Service.OverviewCache())
		sweep := app.Config.CacheTTL
		if sweep <= 0 {
			sweep = time.Minute
		}
		caches.StartCleanup(sweep)

		ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Server shutdown error", log.FieldError, err)
			}
			caches.Stop()
		})

		logger.Info("HTTP server starting",
			"addr", srv.Addr,
			"backend", app.Config.DataBackend,
			"events", app.Config.EventsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		cli.WaitForShutdown(ctx, done)
		return nil
	},
}
