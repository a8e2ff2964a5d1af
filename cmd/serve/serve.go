// Package serve implements the serve command.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/mldata/internal/config"
	"github.com/leefowlercu/mldata/internal/devserver"
	"github.com/leefowlercu/mldata/internal/metrics"
	"github.com/leefowlercu/mldata/internal/version"
)

const (
	metricsInterval = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

var (
	serveBind     string
	servePort     int
	serveDBPath   string
	servePageSize int
)

// ServeCmd runs the development server.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development dataset server",
	Long: "Run the development dataset server.\n\n" +
		"Serves the dataset API over a local SQLite file so the other commands " +
		"can be tried without a remote service. Pages hold server.page_size " +
		"elements. Prometheus metrics are exposed on /metrics. The server runs " +
		"until interrupted.",
	Example: `  # Serve on the configured address
  mldata serve

  # Small pages to exercise pagination
  mldata serve --port 9090 --page-size 3`,
	Args:    cobra.NoArgs,
	PreRunE: validateServe,
	RunE:    runServe,
}

func init() {
	ServeCmd.Flags().StringVar(&serveBind, "bind", "", "Address to bind; defaults to server.bind")
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on; defaults to server.port")
	ServeCmd.Flags().StringVar(&serveDBPath, "db", "", "SQLite database path; defaults to server.db_path")
	ServeCmd.Flags().IntVar(&servePageSize, "page-size", 0, "Elements per page; defaults to server.page_size")
}

func validateServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") && (servePort < 1 || servePort > 65535) {
		return fmt.Errorf("--port must be between 1 and 65535, got %d", servePort)
	}
	if cmd.Flags().Changed("page-size") && servePageSize < 1 {
		return fmt.Errorf("--page-size must be at least 1, got %d", servePageSize)
	}
	cmd.SilenceUsage = true
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get().Server
	dbPath := config.GetPath("server.db_path")
	if cmd.Flags().Changed("bind") {
		cfg.Bind = serveBind
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("db") {
		dbPath = config.ExpandHome(serveDBPath)
	}
	if cmd.Flags().Changed("page-size") {
		cfg.PageSize = servePageSize
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default().With("component", "devserver")

	store, err := devserver.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	collector := metrics.NewCollector(metricsInterval)
	collector.Register("store", store)
	if err := collector.Start(ctx, version.Get().Version); err != nil {
		return fmt.Errorf("failed to start metrics collector; %w", err)
	}
	defer collector.Stop()

	srv := devserver.NewServer(store, devserver.Config{
		Bind:     cfg.Bind,
		Port:     cfg.Port,
		PageSize: cfg.PageSize,
	}, devserver.WithLogger(logger))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down development server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
