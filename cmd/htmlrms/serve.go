package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/internal/platform"
	"github.com/aretw0/htmlrms/pkg/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace read-only over HTTP",
	Long: `Serve records as JSON and variants as raw HTML:

  GET /health
  GET /records?q=term
  GET /records/{id}
  GET /records/{id}/variants/{key}
  GET /metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		ws, _, err := openWorkspace(cmd, platform.WithReadOnly(true), platform.WithMetrics(reg))
		if err != nil {
			return err
		}
		defer ws.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := httpapi.NewHandler(ws.Store, httpapi.WithGatherer(reg), httpapi.WithLogger(logger))
		return serveHTTP(ctx, serveAddr, handler, func(addr string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d records on http://%s\n", ws.Store.Len(), addr)
		})
	},
}

// serveHTTP runs handler on addr until ctx is done, then shuts down
// gracefully. ready receives the bound address.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, ready func(string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
