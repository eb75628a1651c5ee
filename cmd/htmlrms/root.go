package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/internal/platform"
)

var (
	verbose     bool
	workspace   string
	adapter     string
	slotName    string
	timeout     time.Duration
	gitless     bool
	logger      = slog.Default()
	errReported = errors.New("one or more operations failed")
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "htmlrms",
	Short: "A versioned store for HTML snippets with import reconciliation",
	Long: `htmlrms keeps named HTML snippets ("products"), each with a default body
and any number of named variants, and persists the whole collection as one
snapshot in a file, SQLite, Postgres or an S3 bucket.

Imports accept JSON or YAML exports in several shapes and never overwrite an
existing record without confirmation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory, database file, DSN or s3:// uri (default: discovered root or current directory)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "fs", "Storage adapter: fs, sqlite, postgres, s3, memory")
	rootCmd.PersistentFlags().StringVar(&slotName, "slot", platform.DefaultSlotName, "Snapshot slot name")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Snapshot write timeout (default 5s)")
	rootCmd.PersistentFlags().BoolVar(&gitless, "gitless", false, "Disable git versioning for the fs adapter")
}

// openWorkspace resolves the workspace root, applies htmlrms.yaml and then
// the flags that were set explicitly.
func openWorkspace(cmd *cobra.Command, extra ...platform.Option) (*platform.Workspace, string, error) {
	root, err := workspaceRoot()
	if err != nil {
		return nil, "", err
	}
	cfg, err := platform.LoadConfig(filepath.Join(root, platform.ConfigFileName))
	if err != nil {
		return nil, "", err
	}

	opts := cfg.Options()
	opts = append(opts, platform.WithLogger(logger))
	flags := cmd.Flags()
	if flags.Changed("adapter") {
		opts = append(opts, platform.WithAdapter(adapter))
	}
	if flags.Changed("slot") {
		opts = append(opts, platform.WithSlotName(slotName))
	}
	if flags.Changed("timeout") {
		opts = append(opts, platform.WithTimeout(timeout))
	}
	if flags.Changed("gitless") {
		opts = append(opts, platform.WithVersioning(!gitless))
	}
	opts = append(opts, extra...)

	uri := root
	switch {
	case workspace != "" && !isDir(workspace):
		uri = workspace
	case cfg.URI != "":
		uri = cfg.URI
		if !strings.Contains(uri, "://") && !filepath.IsAbs(uri) {
			uri = filepath.Join(root, uri)
		}
	}

	ws, err := platform.Open(context.Background(), uri, opts...)
	if err != nil {
		return nil, "", err
	}
	return ws, root, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// workspaceRoot is the directory holding htmlrms.yaml: --workspace when it
// names a directory (or the parent of a database file), otherwise the
// discovered root or the working directory.
func workspaceRoot() (string, error) {
	if workspace != "" && !strings.Contains(workspace, "://") {
		if !isDir(workspace) && filepath.Ext(workspace) != "" {
			return filepath.Abs(filepath.Dir(workspace))
		}
		return filepath.Abs(workspace)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := platform.FindRoot(cwd)
	if errors.Is(err, platform.ErrRootNotFound) {
		return cwd, nil
	}
	return root, err
}
