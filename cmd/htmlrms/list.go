package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/internal/platform"
	"github.com/aretw0/htmlrms/pkg/core"
)

var (
	listJSON   bool
	listSearch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List records ordered by id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, _, err := openWorkspace(cmd, platform.WithReadOnly(true))
		if err != nil {
			return err
		}
		defer ws.Close()

		records := ws.Store.Search(listSearch)
		out := cmd.OutOrStdout()

		if listJSON {
			if records == nil {
				records = []core.Record{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(records)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tVARIANTS\tUPDATED")
		for _, r := range records {
			updated := "-"
			if r.UpdatedAt != nil {
				updated = r.UpdatedAt.Format("2006-01-02 15:04")
			}
			variants := strings.Join(r.VariantKeys(), ",")
			if variants == "" {
				variants = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, variants, updated)
		}
		return tw.Flush()
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter by id or name (case-insensitive)")
	rootCmd.AddCommand(listCmd)
}
