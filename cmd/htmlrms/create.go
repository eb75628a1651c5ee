package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/internal/platform"
	"github.com/aretw0/htmlrms/pkg/core"
)

var (
	createName    string
	createStarter bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a record and print its id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []platform.Option
		if createStarter {
			opts = append(opts, platform.WithTemplate(core.StarterTemplate))
		}
		ws, _, err := openWorkspace(cmd, opts...)
		if err != nil {
			return err
		}
		defer ws.Close()

		ctx := context.Background()
		r, err := ws.Store.Create(ctx)
		if err != nil {
			return err
		}
		if createName != "" {
			if err := ws.Store.Rename(ctx, r.ID, createName); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), r.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "Name of the new record")
	createCmd.Flags().BoolVar(&createStarter, "starter", false, "Start with the starter HTML template")
	rootCmd.AddCommand(createCmd)
}
