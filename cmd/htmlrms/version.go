package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of htmlrms",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "htmlrms version %s\n", strings.TrimSpace(htmlrms.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
