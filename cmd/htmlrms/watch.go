package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/lifecycle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/internal/platform"
	"github.com/aretw0/htmlrms/pkg/httpapi"
	"github.com/aretw0/htmlrms/pkg/watch"
)

var (
	watchPattern     string
	watchYes         bool
	watchMetricsAddr string
)

// slotOwner is implemented by slots backed by files on disk.
type slotOwner interface {
	Owns(path string) bool
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Import every export dropped into a directory",
	Long: `Watch a directory and import JSON or YAML files once they stop changing.
Imports that would overwrite existing records are cancelled unless --yes is
set. With --metrics-addr the read-only HTTP API and /metrics are served too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		ws, _, err := openWorkspace(cmd, platform.WithMetrics(reg))
		if err != nil {
			return err
		}
		defer ws.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := watch.Config{
			Dir:     args[0],
			Pattern: watchPattern,
			Logger:  logger,
		}
		// The fs slot may live inside the watched tree; its own writes must
		// not be imported again.
		if o, ok := ws.Slot.(slotOwner); ok {
			cfg.Ignore = o.Owns
		}
		watcher, err := watch.New(cfg, func(ctx context.Context, path string) error {
			res, err := importFile(ctx, ws.Importer, path, func([]string) bool { return watchYes })
			if err != nil {
				return err
			}
			logger.Info("import finished", "file", path, "state", res.State, "records", res.Count, "collisions", len(res.Collisions))
			return nil
		})
		if err != nil {
			return err
		}

		if watchMetricsAddr != "" {
			handler := httpapi.NewHandler(ws.Store, httpapi.WithGatherer(reg), httpapi.WithLogger(logger))
			lifecycle.Go(ctx, func(ctx context.Context) error {
				return serveHTTP(ctx, watchMetricsAddr, handler, func(addr string) {
					logger.Info("serving metrics", "addr", addr)
				})
			}, lifecycle.WithErrorHandler(func(err error) {
				logger.Error("metrics server failed", "error", err)
			}))
		}

		if err := watcher.Start(ctx); err != nil {
			return err
		}
		<-watcher.Done()
		logger.Info("watcher stopped", "state", watcher.State())
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchPattern, "pattern", watch.DefaultPattern, "Files to import (doublestar pattern relative to the directory)")
	watchCmd.Flags().BoolVarP(&watchYes, "yes", "y", false, "Overwrite existing records without asking")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve the HTTP API and /metrics on this address")
	rootCmd.AddCommand(watchCmd)
}
