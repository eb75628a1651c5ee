package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

// historian is implemented by slots that keep a change log (fs with git).
type historian interface {
	History(ctx context.Context, limit int) ([]string, error)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the commits that changed the snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		h, ok := ws.Slot.(historian)
		if !ok {
			return fmt.Errorf("the %T slot does not keep history", ws.Slot)
		}
		lines, err := h.History(context.Background(), historyLimit)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries")
	rootCmd.AddCommand(historyCmd)
}
