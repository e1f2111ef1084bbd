// ABOUTME: CLI command to show the current and best streak
// ABOUTME: Prints the summary plus a per-day view of the current week
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/core"
)

type weekDayView struct {
	Date     string `json:"date"`
	Complete bool   `json:"complete"`
}

type streakView struct {
	UserID             string        `json:"user_id"`
	Today              string        `json:"today"`
	CurrentStreak      int           `json:"current_streak"`
	BestStreak         int           `json:"best_streak"`
	TotalCompletedDays int           `json:"total_completed_days"`
	LastCompletedDate  string        `json:"last_completed_date,omitempty"`
	Week               []weekDayView `json:"week"`
}

func newStreakView(s core.Snapshot, week calendar.Range) streakView {
	v := streakView{
		UserID:             s.UserID,
		Today:              s.Today.String(),
		CurrentStreak:      s.Streak.CurrentStreak,
		BestStreak:         s.Streak.BestStreak,
		TotalCompletedDays: s.Streak.TotalCompletedDays,
	}
	if s.Streak.LastCompletedDate != nil {
		v.LastCompletedDate = s.Streak.LastCompletedDate.String()
	}
	for _, day := range week.Days() {
		v.Week = append(v.Week, weekDayView{Date: day.String(), Complete: s.IsComplete(day)})
	}
	return v
}

// NewStreakCmd creates the streak command
func NewStreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show your meal streak",
		Long: `Show the current and best streak of complete days.

Streaks are derived from the current week and the trailing window
(MEALSTREAK_TRAILING_DAYS, default 30). The current streak only counts
while today is complete.

Examples:
  mealstreak streak
  mealstreak streak --format json`,
		RunE: runStreak,
	}
}

func runStreak(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.Snapshot()
	view := newStreakView(snap, calendar.Week(snap.Today, a.Config.FirstWeekday()))

	if outputFormat == "json" {
		return printJSON(cmd, view)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current streak: %s\n", pluralDays(view.CurrentStreak))
	fmt.Fprintf(out, "Best streak:    %s\n", pluralDays(view.BestStreak))
	fmt.Fprintf(out, "Completed days: %d\n", view.TotalCompletedDays)
	if view.LastCompletedDate != "" {
		fmt.Fprintf(out, "Last complete:  %s\n", view.LastCompletedDate)
	}
	if quiet {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DATE\tDAY\tDONE\n")
	for _, d := range view.Week {
		day := calendar.MustParse(d.Date)
		mark := "·"
		if d.Complete {
			mark = "✓"
		}
		if d.Date == view.Today {
			mark += " (today)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Date, day.Weekday().String()[:3], mark)
	}
	return w.Flush()
}
