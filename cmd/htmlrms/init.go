package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/internal/platform"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workspace",
	Long: `Create the workspace marker directory and an empty snapshot. With the fs
adapter the directory also becomes a git repository unless --gitless is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, root, err := openWorkspace(cmd,
			platform.WithAutoInit(true),
			platform.WithVersioning(!gitless),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}
		defer ws.Close()

		if err := os.MkdirAll(filepath.Join(root, platform.SystemDir), 0755); err != nil {
			return err
		}
		if ws.Store.Len() == 0 {
			if err := ws.Store.Flush(context.Background()); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace in %s (%d records)\n", root, ws.Store.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
