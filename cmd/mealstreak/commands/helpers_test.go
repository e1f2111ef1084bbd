// ABOUTME: Shared test helpers for CLI commands
// ABOUTME: Points openApp at an in-memory sqlite store with a pinned clock
package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/mealstreak/internal/app"
	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/config"
	"github.com/harper/mealstreak/internal/core"
	"github.com/harper/mealstreak/internal/models"
	"github.com/harper/mealstreak/internal/storage/sqlite"
)

// Friday; the monday-start week is 2024-04-29..2024-05-05
var fixedNow = time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)

func setupTestApp(t *testing.T) *sqlite.Completions {
	t.Helper()

	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	store := sqlite.NewCompletions(db)

	cfg := &config.Config{
		Backend:      config.BackendSQLite,
		UserID:       "alice",
		DayRule:      string(models.RuleAnyMeal),
		TrailingDays: 30,
		WeekStart:    "monday",
		Timezone:     "UTC",
		MaxRetries:   0,
		LogLevel:     "info",
	}

	prevOpen, prevNow := openApp, now
	now = func() time.Time { return fixedNow }
	openApp = func(cmd *cobra.Command) (*app.App, error) {
		a := app.New(cfg, store, core.NewManualAuth(core.SignedIn(cfg.UserID)), log.New(&bytes.Buffer{}),
			core.WithClock(now))
		if err := a.Start(cmd.Context()); err != nil {
			return nil, err
		}
		return a, nil
	}
	t.Cleanup(func() {
		openApp, now = prevOpen, prevNow
		_ = db.Close()
	})
	return store
}

func seed(t *testing.T, store *sqlite.Completions, slot string, dates ...string) {
	t.Helper()
	at := fixedNow
	for _, d := range dates {
		if err := store.Upsert(context.Background(), "alice", calendar.MustParse(d), slot, models.CompletionAteExact, &at); err != nil {
			t.Fatalf("Upsert(%s) error = %v", d, err)
		}
	}
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
