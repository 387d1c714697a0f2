// Package serve implements the serve command: the HTTP API behind the chart pages.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/cultura-csv/cmd/root"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/web"

	"github.com/spf13/cobra"
)

// ShutdownGrace bounds how long in-flight requests may run after a stop signal.
const ShutdownGrace = 10 * time.Second

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve datasets, tables and maps over HTTP",
	Long: `Start the HTTP API under /api. Every request may carry an X-Session-ID header;
loads sharing a ?control= value within a session supersede each other.

  cultura-csv serve --addr :8080`,
	Run: func(cmd *cobra.Command, args []string) {
		appContainer := root.GetContainer()
		if appContainer == nil {
			root.Log.Fatal("Container not initialized")
		}
		logger := appContainer.GetLogger()
		cfg := appContainer.GetConfig()

		listen := addr
		if listen == "" {
			listen = cfg.Server.Addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := web.NewServer(appContainer.GetService(), appContainer.GetSessions(), logger, cfg.RequestTimeout())
		if err := Serve(ctx, srv, listen, logger); err != nil {
			logger.Fatalf("Server error: %v", err)
		}
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
}

// Serve runs srv on addr until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, srv *web.Server, addr string, logger logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
