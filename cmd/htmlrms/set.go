package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/pkg/core"
)

var (
	setVariant string
	setContent string
	setFile    string
)

var setCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Replace the body or a variant of a record",
	Long: `Replace the body (default variant) or a named variant of a record.
Content comes from --content, --file or standard input, in that order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}

		ws, _, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		id := args[0]
		if _, ok := ws.Store.Get(id); !ok {
			return fmt.Errorf("record not found: %s", id)
		}
		if err := ws.Store.SetContent(context.Background(), id, setVariant, content); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Record '%s' (%s) saved.\n", id, setVariant)
		return nil
	},
}

func readContent(cmd *cobra.Command) (string, error) {
	switch {
	case cmd.Flags().Changed("content"):
		return setContent, nil
	case setFile != "":
		data, err := os.ReadFile(setFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
}

func init() {
	setCmd.Flags().StringVar(&setVariant, "variant", core.DefaultVariant, "Variant to write")
	setCmd.Flags().StringVar(&setContent, "content", "", "Content to write")
	setCmd.Flags().StringVarP(&setFile, "file", "f", "", "Read content from a file")
	rootCmd.AddCommand(setCmd)
}
