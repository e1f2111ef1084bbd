// ABOUTME: Tests for the store row encoding and typed store errors
// ABOUTME: Verifies decode failures are data errors and wrapping is preserved
package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
)

func TestRow_EncodeDecode(t *testing.T) {
	day := calendar.MustParse("2024-05-01")
	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

	row := NewRow("user-1", day, models.SlotBreakfast, models.CompletionAteSimilar, &at)
	if row.Date != "2024-05-01" {
		t.Errorf("Date = %q, want 2024-05-01", row.Date)
	}
	if row.Completion != "ateSimilar" {
		t.Errorf("Completion = %q, want ateSimilar", row.Completion)
	}

	rec, err := row.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.Date != day || rec.MealSlot != models.SlotBreakfast || rec.Completion != models.CompletionAteSimilar {
		t.Errorf("Decode() = %+v", rec)
	}
	if rec.CompletedAt == nil || !rec.CompletedAt.Equal(at) {
		t.Errorf("CompletedAt = %v, want %v", rec.CompletedAt, at)
	}
}

func TestRow_DecodeRejects(t *testing.T) {
	bad := "yesterday"
	tests := []struct {
		name string
		row  Row
	}{
		{"bad date", Row{Date: "05/01/2024", MealSlot: "lunch", Completion: "ateExact"}},
		{"bad completion", Row{Date: "2024-05-01", MealSlot: "lunch", Completion: "eaten"}},
		{"empty slot", Row{Date: "2024-05-01", MealSlot: "", Completion: "ateExact"}},
		{"bad completed_at", Row{Date: "2024-05-01", MealSlot: "lunch", Completion: "ateExact", CompletedAt: &bad}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.row.Decode()
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsDataError(err) {
				t.Errorf("IsDataError(%v) = false, want true", err)
			}
			if IsRetryable(err) {
				t.Errorf("IsRetryable(%v) = true, want false", err)
			}
		})
	}
}

func TestStoreError_Classification(t *testing.T) {
	ioErr := fmt.Errorf("mark meal: %w", NewIOError("upsert", context.DeadlineExceeded))
	if !IsRetryable(ioErr) {
		t.Error("wrapped I/O error should be retryable")
	}
	if IsDataError(ioErr) {
		t.Error("I/O error should not be a data error")
	}
	if !errors.Is(ioErr, context.DeadlineExceeded) {
		t.Error("StoreError should unwrap to its cause")
	}

	if IsRetryable(errors.New("plain")) || IsDataError(errors.New("plain")) {
		t.Error("plain errors are neither retryable nor data errors")
	}
}

func TestCheckUpsert(t *testing.T) {
	day := calendar.MustParse("2024-05-01")

	tests := []struct {
		name       string
		userID     string
		date       calendar.Day
		slot       string
		completion models.Completion
		wantErr    bool
	}{
		{"valid", "u1", day, "lunch", models.CompletionAteExact, false},
		{"empty user", " ", day, "lunch", models.CompletionAteExact, true},
		{"user with separator", "u1:2024-05-01", day, "lunch", models.CompletionAteExact, true},
		{"zero date", "u1", calendar.Day{}, "lunch", models.CompletionAteExact, true},
		{"empty slot", "u1", day, "", models.CompletionAteExact, true},
		{"none is a delete", "u1", day, "lunch", models.CompletionNone, true},
		{"unknown completion", "u1", day, "lunch", models.Completion("chomped"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUpsert(tt.userID, tt.date, tt.slot, tt.completion)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckUpsert() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsDataError(err) {
				t.Errorf("CheckUpsert() error = %v, want data error", err)
			}
		})
	}
}

func TestCheckUserID(t *testing.T) {
	if err := CheckUserID("query", "alice"); err != nil {
		t.Errorf("CheckUserID(alice) error = %v", err)
	}
	for _, id := range []string{"", "  ", "alice:", "alice:2024-05-01"} {
		if err := CheckUserID("query", id); !IsDataError(err) {
			t.Errorf("CheckUserID(%q) error = %v, want data error", id, err)
		}
	}
}
