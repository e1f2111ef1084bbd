// ABOUTME: CLI command to list completion records
// ABOUTME: Fetches a date range from the store and prints it
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listFrom string
	listTo   string
	listDays int
)

type recordView struct {
	Date        string `json:"date"`
	Slot        string `json:"slot"`
	Completion  string `json:"completion"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// NewListCmd creates list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meal completions",
		Long: `List meal completions for a date range.

Without --from/--to the last --days days (default 7) are shown.

Examples:
  mealstreak list
  mealstreak list --days 30
  mealstreak list --from 2024-05-01 --to 2024-05-31
  mealstreak list --format json`,
		RunE: runList,
	}

	cmd.Flags().StringVar(&listFrom, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&listTo, "to", "", "Last day (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&listDays, "days", 7, "Number of days ending today")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := resolveRange(listFrom, listTo, listDays, a.Today())
	if err != nil {
		return err
	}

	records, err := a.FetchCompletions(cmd.Context(), r)
	if err != nil {
		return err
	}

	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		v := recordView{Date: rec.Date.String(), Slot: rec.MealSlot, Completion: string(rec.Completion)}
		if rec.CompletedAt != nil {
			v.CompletedAt = rec.CompletedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		views = append(views, v)
	}

	if outputFormat == "json" {
		return printJSON(cmd, views)
	}

	if len(records) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No completions in %s\n", r)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DATE\tSLOT\tCOMPLETION\tMARKED\n")
	fmt.Fprintf(w, "----\t----\t----------\t------\n")
	for _, rec := range records {
		marked := "-"
		if rec.CompletedAt != nil {
			marked = formatTime(*rec.CompletedAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.Date, rec.MealSlot, rec.Completion, marked)
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d completion(s) in %s\n", len(records), r)
	}
	return nil
}
