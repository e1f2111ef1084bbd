// ABOUTME: CLI command to export completions and derived streaks
// ABOUTME: Writes YAML, JSON or Markdown to stdout or a file
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/mealstreak/internal/storage"
)

var (
	exportFrom   string
	exportTo     string
	exportDays   int
	exportOutput string
	exportType   string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completions and streaks",
		Long: `Export completion records for a range together with per-day
completion and the streak summary over that range.

The file type follows --type, else the --output extension, else YAML.

Examples:
  mealstreak export
  mealstreak export --days 90 --output meals.json
  mealstreak export --from 2024-01-01 --to 2024-12-31 --type markdown`,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportFrom, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&exportTo, "to", "", "Last day (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&exportDays, "days", 30, "Number of days ending today")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&exportType, "type", "", "yaml, json or markdown")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := resolveRange(exportFrom, exportTo, exportDays, a.Today())
	if err != nil {
		return err
	}

	data, err := a.Export(cmd.Context(), r)
	if err != nil {
		return err
	}

	format := exportType
	if format == "" {
		format = storage.FormatYAML
		if exportOutput != "" {
			format = storage.FormatFromPath(exportOutput)
		}
	}

	if exportOutput == "" {
		return data.Write(cmd.OutOrStdout(), format)
	}
	if err := data.WriteFile(exportOutput, format); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d completion(s) to %s\n", len(data.Records), exportOutput)
	}
	return nil
}
