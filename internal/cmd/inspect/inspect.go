// Package inspect implements the inspect command, which lists the paths of
// the artwork and the step that reveals each of them.
package inspect

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syllabyte/brainprogress/internal/cli"
	"github.com/syllabyte/brainprogress/internal/geometry"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/progress"
	"github.com/syllabyte/brainprogress/internal/ui"
)

// New creates the inspect sub-command.
func New() *cobra.Command {
	inspectCommand := &cobra.Command{
		Use:   "inspect",
		Short: "List the paths of the brain artwork",
		Long: `List every path of the brain artwork with its measured length, the step that reveals it
and its position in the autoplay traversal. The reveal table of the manifest is used when
one is found; otherwise the built-in table is shown.`,
		Example: `
# Show the paths as a table
brainprogress inspect

# Include the path data as JSON
brainprogress inspect -o json --paths-data
`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			if !slices.Contains(cli.OutputFormats, format) {
				return fmt.Errorf("invalid output format %q: must be one of %s", format, strings.Join(cli.OutputFormats, ", "))
			}
			return nil
		},
		RunE: runInspect,
	}

	inspectCommand.Flags().StringP("output", "o", cli.OutputFormatTable, "Output format ("+strings.Join(cli.OutputFormats, "|")+")")
	inspectCommand.Flags().Bool("paths-data", false, "Include the path data in JSON output")

	return inspectCommand
}

func runInspect(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger(cmd)
	format, _ := cmd.Flags().GetString("output")
	withData, _ := cmd.Flags().GetBool("paths-data")

	table := progress.DefaultTable()
	source := "built-in"
	if rt, err := cli.GetRuntime(cmd.Context()); err == nil {
		if m, err := rt.Manifest(cmd.Context()); err == nil {
			t, err := m.Table()
			if err != nil {
				return fmt.Errorf("invalid reveal table: %w", err)
			}
			table, source = t, rt.ManifestPath()
		} else {
			logger.Debug("No manifest, using the built-in reveal table", "err", err)
		}
	}

	vms := cli.PathsToViewModels(geometry.Default(), table, withData)
	logger.Debug("Inspecting paths", "count", len(vms), "table", source)

	if format == cli.OutputFormatJSON {
		data, err := json.MarshalIndent(vms, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal paths: %w", err)
		}
		cli.PrintHighlighted(cmd.OutOrStdout(), data, "json")
		return nil
	}

	rows := make([]ui.Row, 0, len(vms))
	for _, vm := range vms {
		rows = append(rows, cli.PathRow(vm))
	}
	ui.NewTable().SetColumns(cli.GetPathColumns()).SetRows(rows).Print(cmd.OutOrStdout())
	return nil
}
