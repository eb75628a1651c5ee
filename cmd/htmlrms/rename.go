package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Change the display name of a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		if _, ok := ws.Store.Get(args[0]); !ok {
			return fmt.Errorf("record not found: %s", args[0])
		}
		if err := ws.Store.Rename(context.Background(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Record '%s' renamed.\n", args[0])
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <old-id> <new-id>",
	Short: "Change the id of a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		if _, ok := ws.Store.Get(args[0]); !ok {
			return fmt.Errorf("record not found: %s", args[0])
		}
		if err := ws.Store.ChangeID(context.Background(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Record '%s' moved.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(moveCmd)
}
