package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niklvrr/reviewpulse/internal/transport"
	"github.com/niklvrr/reviewpulse/internal/transport/handler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the HTTP dashboard with the configured reports and task metrics.

Endpoints:
  GET /reports            configured reports
  GET /reports/{name}     a generated report (?format=html|json|text)
  GET /stats              metric kinds, intervals and teams
  GET /stats/{kind}       task metrics (?interval=&period_start=&period_end=&team=&customer=&projects=)
  GET /health             liveness and last run store status
  GET /metrics            Prometheus metrics

Examples:
  reviewpulse serve
  reviewpulse serve --port 9000 --timeout 2m`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort    string
	serveTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (default: $APP_PORT or 8080)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", transport.DefaultRequestTimeout, "Per-request timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.App.Port
	if servePort != "" {
		port = servePort
	}

	// Слои
	reportHandler := handler.NewReportHandler(a.reportService(), a.log)
	statsHandler := handler.NewStatsHandler(a.metricsService(), a.settings.TeamProjectNames, a.log)
	var pinger handler.Pinger
	if a.store != nil {
		pinger = a.store
	}
	healthHandler := handler.NewHealthHandler(pinger, a.log)

	router := transport.NewRouter(reportHandler, statsHandler, healthHandler, serveTimeout, a.log)
	server := transport.NewServer(port, router, a.log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	a.log.Info("server stopped gracefully")
	return nil
}
