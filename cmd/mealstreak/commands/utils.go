// ABOUTME: Shared helpers for CLI commands
// ABOUTME: App bootstrap, day and range flag parsing, and output formatting
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/mealstreak/internal/app"
	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/config"
	"github.com/harper/mealstreak/internal/core"
)

// now is the CLI clock; tests pin it
var now = time.Now

// openApp loads config, opens the backend and loads the current windows.
// Tests replace it to run commands against an in-memory store.
var openApp = func(cmd *cobra.Command) (*app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := app.NewLogger(cmd.ErrOrStderr(), logLevel(cfg))
	a, err := app.Open(cfg, logger, core.WithClock(now))
	if err != nil {
		return nil, err
	}
	if err := a.Start(cmd.Context()); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	return a, nil
}

func logLevel(cfg *config.Config) log.Level {
	switch {
	case verbose:
		return log.DebugLevel
	case quiet:
		return log.ErrorLevel
	default:
		return cfg.Level()
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return nil
}

// parseDay accepts YYYY-MM-DD, "today" or "yesterday"
func parseDay(s string, today calendar.Day) (calendar.Day, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Day{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD, today or yesterday)", s)
	}
	return d, nil
}

// resolveRange picks the range from --from/--to, falling back to the last
// days days ending today
func resolveRange(from, to string, days int, today calendar.Day) (calendar.Range, error) {
	if from == "" && to == "" {
		if err := validatePositiveInt(days, "--days"); err != nil {
			return calendar.Range{}, err
		}
		return calendar.Trailing(today, days), nil
	}

	end, err := parseDay(to, today)
	if err != nil {
		return calendar.Range{}, err
	}
	start := end
	if from != "" {
		if start, err = parseDay(from, today); err != nil {
			return calendar.Range{}, err
		}
	}
	return calendar.NewRange(start, end)
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// formatTime formats a time relative to the CLI clock
func formatTime(t time.Time) string {
	diff := now().Sub(t)

	switch {
	case diff < 0:
		return t.Format("2006-01-02 15:04")
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
