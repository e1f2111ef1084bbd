// ABOUTME: CLI command to mark a meal slot as eaten
// ABOUTME: Writes through to the store and reports the updated streak
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/mealstreak/internal/models"
)

var (
	markDate       string
	markCompletion string
	markClear      bool
)

// NewMarkCmd creates the mark command
func NewMarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark <slot>",
		Short: "Mark a meal as eaten",
		Long: `Mark a meal slot as eaten on a day.

Slots are breakfast, lunch, dinner or logged_meal. Marking the same
slot again replaces its completion; --clear removes it.

Examples:
  mealstreak mark lunch
  mealstreak mark dinner --date yesterday --completion ateSimilar
  mealstreak mark breakfast --date 2024-05-01 --clear`,
		Args: cobra.ExactArgs(1),
		RunE: runMark,
	}

	cmd.Flags().StringVar(&markDate, "date", "today", "Day to mark (YYYY-MM-DD, today or yesterday)")
	cmd.Flags().StringVar(&markCompletion, "completion", string(models.CompletionAteExact), "ateExact or ateSimilar")
	cmd.Flags().BoolVar(&markClear, "clear", false, "Remove the completion instead of setting it")

	return cmd
}

func runMark(cmd *cobra.Command, args []string) error {
	slot, err := models.NormalizeSlot(args[0])
	if err != nil {
		return err
	}

	completion := models.CompletionNone
	if !markClear {
		completion, err = models.ParseCompletion(markCompletion)
		if err != nil {
			return err
		}
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	day, err := parseDay(markDate, a.Today())
	if err != nil {
		return err
	}

	if err := a.MarkMeal(cmd.Context(), a.Day(day), slot, completion); err != nil {
		return err
	}

	snap := a.Snapshot()
	if outputFormat == "json" {
		return printJSON(cmd, map[string]any{
			"date":           day.String(),
			"slot":           slot,
			"completion":     string(completion),
			"day_complete":   snap.IsComplete(day),
			"current_streak": snap.Streak.CurrentStreak,
		})
	}
	if quiet {
		return nil
	}

	if completion == models.CompletionNone {
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s on %s\n", slot, day)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %s on %s as %s\n", slot, day, completion)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current streak: %s\n", pluralDays(snap.Streak.CurrentStreak))
	return nil
}
