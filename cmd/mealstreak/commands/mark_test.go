// ABOUTME: Tests for mark command
// ABOUTME: Runs mark against an in-memory store and checks stored rows

package commands

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/harper/mealstreak/internal/calendar"
)

func TestNewMarkCmd(t *testing.T) {
	cmd := NewMarkCmd()

	if cmd.Use != "mark <slot>" {
		t.Errorf("Use = %q, want %q", cmd.Use, "mark <slot>")
	}

	tests := []struct {
		flag     string
		defValue string
	}{
		{"date", "today"},
		{"completion", "ateExact"},
		{"clear", "false"},
	}
	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Fatalf("--%s flag not found", tt.flag)
		}
		if f.DefValue != tt.defValue {
			t.Errorf("--%s default = %q, want %q", tt.flag, f.DefValue, tt.defValue)
		}
	}
}

func TestMarkCmd_MarksToday(t *testing.T) {
	store := setupTestApp(t)

	out, err := runCmd(t, "mark", "lunch")
	if err != nil {
		t.Fatalf("mark error = %v", err)
	}
	if !strings.Contains(out, "Marked lunch on 2024-05-03 as ateExact") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Current streak: 1 day") {
		t.Errorf("output = %q, want streak line", out)
	}

	rows, err := store.Query(context.Background(), "alice", calendar.SingleDay(calendar.MustParse("2024-05-03")))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(rows) != 1 || rows[0].MealSlot != "lunch" || rows[0].Completion != "ateExact" {
		t.Errorf("rows = %+v, want one ateExact lunch", rows)
	}
}

func TestMarkCmd_ExtendsStreak(t *testing.T) {
	store := setupTestApp(t)
	seed(t, store, "dinner", "2024-05-01", "2024-05-02")

	out, err := runCmd(t, "--format", "json", "mark", "breakfast", "--completion", "ateSimilar")
	if err != nil {
		t.Fatalf("mark error = %v", err)
	}

	var got struct {
		Date          string `json:"date"`
		Completion    string `json:"completion"`
		DayComplete   bool   `json:"day_complete"`
		CurrentStreak int    `json:"current_streak"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Date != "2024-05-03" || got.Completion != "ateSimilar" || !got.DayComplete {
		t.Errorf("result = %+v", got)
	}
	if got.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3", got.CurrentStreak)
	}
}

func TestMarkCmd_Clear(t *testing.T) {
	store := setupTestApp(t)
	seed(t, store, "lunch", "2024-05-02")

	out, err := runCmd(t, "mark", "lunch", "--date", "yesterday", "--clear")
	if err != nil {
		t.Fatalf("mark --clear error = %v", err)
	}
	if !strings.Contains(out, "Cleared lunch on 2024-05-02") {
		t.Errorf("output = %q", out)
	}

	n, err := store.Count(context.Background(), "alice")
	if err != nil || n != 0 {
		t.Errorf("Count() = %d, %v; want 0", n, err)
	}
}

func TestMarkCmd_Errors(t *testing.T) {
	setupTestApp(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no slot", []string{"mark"}},
		{"blank slot", []string{"mark", " "}},
		{"bad completion", []string{"mark", "lunch", "--completion", "skipped"}},
		{"bad date", []string{"mark", "lunch", "--date", "03/05/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCmd(t, tt.args...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
