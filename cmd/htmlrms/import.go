package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/htmlrms/pkg/merge"
	"github.com/aretw0/htmlrms/pkg/normalize"
)

var (
	importYes bool
	importNo  bool
)

var importCmd = &cobra.Command{
	Use:   "import <file|glob>...",
	Short: "Merge exported records into the workspace",
	Long: `Import JSON or YAML exports. Accepted shapes are a list of records, an
object with a "products" list (optionally with a "version" marker) or a
single record. Records whose id already exists are only overwritten after
confirmation: interactively, or with --yes. --no skips such files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importYes && importNo {
			return fmt.Errorf("--yes and --no are mutually exclusive")
		}
		files, err := expandGlobs(args)
		if err != nil {
			return err
		}

		ws, _, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		out := cmd.OutOrStdout()
		in := bufio.NewReader(cmd.InOrStdin())
		failed := false
		for _, file := range files {
			res, err := importFile(context.Background(), ws.Importer, file, func(collisions []string) bool {
				switch {
				case importYes:
					return true
				case importNo:
					return false
				default:
					return confirm(out, in, collisions)
				}
			})
			if err != nil {
				failed = true
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", file, err)
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", file, res.Message())
		}
		if failed {
			return errReported
		}
		return nil
	},
}

func importFile(ctx context.Context, im *merge.Importer, path string, decide func([]string) bool) (merge.Result, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return merge.Result{State: merge.StateFailed}, err
	}
	return im.Import(ctx, payload, normalize.FormatFromPath(path), decide)
}

// expandGlobs resolves doublestar patterns; plain paths pass through so a
// missing file is reported by the import itself.
func expandGlobs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

func confirm(out io.Writer, in *bufio.Reader, collisions []string) bool {
	fmt.Fprintf(out, "%d existing records will be overwritten (%s). Continue? [y/N] ",
		len(collisions), strings.Join(collisions, ", "))
	answer, _ := in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Overwrite existing records without asking")
	importCmd.Flags().BoolVar(&importNo, "no", false, "Never overwrite existing records")
	rootCmd.AddCommand(importCmd)
}
