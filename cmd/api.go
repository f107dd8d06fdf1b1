package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"javasegment/internal/application/common/slogger"

	"github.com/spf13/cobra"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 30 * time.Second
)

// apiCmd represents the api command.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the HTTP API server that segments Java sources and collects
per-method reports.

The server provides endpoints for:
- Health checks (GET /health)
- Method segmentation (POST /api/v1/segments)
- Per-method reports (POST /api/v1/reports, when report.base_url is set)

Configuration is loaded from config files and environment variables.`,
	RunE: runAPIServer,
}

func runAPIServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := setupTelemetry(ctx)
	if err != nil {
		return err
	}
	defer tel.Shutdown(context.WithoutCancel(ctx))

	factory := NewServiceFactory(GetConfig())
	defer factory.Close()

	startCtx, startCancel := context.WithTimeout(ctx, startupTimeout)
	defer startCancel()

	server, err := factory.CreateServer(startCtx)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := server.Start(startCtx); err != nil {
		return err
	}

	slogger.Info(ctx, "API server started", slogger.Fields{
		"address":    server.Address(),
		"middleware": server.MiddlewareCount(),
		"routes":     server.RouteCount(),
	})

	<-ctx.Done()
	slogger.InfoNoCtx("Shutdown signal received, draining connections", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	slogger.InfoNoCtx("API server shut down gracefully", nil)
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(apiCmd)
}
