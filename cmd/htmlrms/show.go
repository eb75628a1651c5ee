package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/internal/platform"
	"github.com/aretw0/htmlrms/pkg/core"
)

var showVariant string

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the body or a variant of a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace(cmd, platform.WithReadOnly(true))
		if err != nil {
			return err
		}
		defer ws.Close()

		id := args[0]
		if _, ok := ws.Store.Get(id); !ok {
			return fmt.Errorf("record not found: %s", id)
		}
		content, ok := ws.Store.Content(id, showVariant)
		if !ok {
			return fmt.Errorf("record %s has no variant %q", id, showVariant)
		}
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showVariant, "variant", core.DefaultVariant, "Variant to print")
	rootCmd.AddCommand(showCmd)
}
