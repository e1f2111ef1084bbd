// ABOUTME: Tests for the SQLite completion store
// ABOUTME: Covers upsert idempotence, per-slot deletes and range queries
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
	"github.com/harper/mealstreak/internal/storage"
)

func newTestCompletions(t *testing.T) *Completions {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewCompletions(db)
}

func TestCompletions_UpsertIsIdempotent(t *testing.T) {
	store := newTestCompletions(t)
	ctx := context.Background()
	day := calendar.MustParse("2024-05-01")
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if err := store.Upsert(ctx, "alice", day, models.SlotLunch, models.CompletionAteExact, &at); err != nil {
			t.Fatalf("Upsert() #%d error = %v", i+1, err)
		}
	}

	n, err := store.Count(ctx, "alice")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestCompletions_UpsertReplacesCompletion(t *testing.T) {
	store := newTestCompletions(t)
	ctx := context.Background()
	day := calendar.MustParse("2024-05-01")

	_ = store.Upsert(ctx, "alice", day, models.SlotLunch, models.CompletionAteExact, nil)
	later := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	if err := store.Upsert(ctx, "alice", day, models.SlotLunch, models.CompletionAteSimilar, &later); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rows, err := store.Query(ctx, "alice", calendar.SingleDay(day))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Query() returned %d rows, want 1", len(rows))
	}
	rec, err := rows[0].Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.Completion != models.CompletionAteSimilar {
		t.Errorf("Completion = %v, want ateSimilar", rec.Completion)
	}
	if rec.CompletedAt == nil || !rec.CompletedAt.Equal(later) {
		t.Errorf("CompletedAt = %v, want %v", rec.CompletedAt, later)
	}
}

func TestCompletions_DeleteOnlyTouchesOneSlot(t *testing.T) {
	store := newTestCompletions(t)
	ctx := context.Background()
	day := calendar.MustParse("2024-05-01")

	_ = store.Upsert(ctx, "alice", day, models.SlotBreakfast, models.CompletionAteExact, nil)
	_ = store.Upsert(ctx, "alice", day, models.SlotLunch, models.CompletionAteExact, nil)

	if err := store.Delete(ctx, "alice", day, models.SlotLunch); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// deleting again is fine
	if err := store.Delete(ctx, "alice", day, models.SlotLunch); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}

	rows, _ := store.Query(ctx, "alice", calendar.SingleDay(day))
	if len(rows) != 1 || rows[0].MealSlot != models.SlotBreakfast {
		t.Errorf("Query() = %+v, want only breakfast", rows)
	}
}

func TestCompletions_QueryRangeIsInclusiveAndPerUser(t *testing.T) {
	store := newTestCompletions(t)
	ctx := context.Background()

	for _, d := range []string{"2024-04-30", "2024-05-01", "2024-05-02", "2024-05-03", "2024-05-04"} {
		_ = store.Upsert(ctx, "alice", calendar.MustParse(d), models.SlotDinner, models.CompletionAteExact, nil)
	}
	_ = store.Upsert(ctx, "bob", calendar.MustParse("2024-05-02"), models.SlotDinner, models.CompletionAteExact, nil)

	r, _ := calendar.ParseRange("2024-05-01", "2024-05-03")
	rows, err := store.Query(ctx, "alice", r)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	want := []string{"2024-05-01", "2024-05-02", "2024-05-03"}
	if len(rows) != len(want) {
		t.Fatalf("Query() returned %d rows, want %d", len(rows), len(want))
	}
	for i, row := range rows {
		if row.Date != want[i] {
			t.Errorf("rows[%d].Date = %v, want %v", i, row.Date, want[i])
		}
		if row.UserID != "alice" {
			t.Errorf("rows[%d].UserID = %v, want alice", i, row.UserID)
		}
	}
}

func TestCompletions_RejectsBadWrites(t *testing.T) {
	store := newTestCompletions(t)
	ctx := context.Background()
	day := calendar.MustParse("2024-05-01")

	err := store.Upsert(ctx, "alice", day, models.SlotLunch, models.CompletionNone, nil)
	if !storage.IsDataError(err) {
		t.Errorf("Upsert(none) error = %v, want data error", err)
	}

	err = store.Delete(ctx, "", day, models.SlotLunch)
	if !storage.IsDataError(err) {
		t.Errorf("Delete(empty user) error = %v, want data error", err)
	}
}

func TestCompletions_ClosedDatabaseIsRetryable(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	store := NewCompletions(db)
	_ = db.Close()

	err = store.Upsert(context.Background(), "alice", calendar.MustParse("2024-05-01"), models.SlotLunch, models.CompletionAteExact, nil)
	if !storage.IsRetryable(err) {
		t.Errorf("Upsert() on closed db error = %v, want retryable", err)
	}
}

func TestCompletions_Bounds(t *testing.T) {
	store := newTestCompletions(t)
	ctx := context.Background()

	if _, ok, err := store.Bounds(ctx, "alice"); err != nil || ok {
		t.Fatalf("Bounds() on empty = ok %v err %v, want false nil", ok, err)
	}

	_ = store.Upsert(ctx, "alice", calendar.MustParse("2024-05-03"), models.SlotLunch, models.CompletionAteExact, nil)
	_ = store.Upsert(ctx, "alice", calendar.MustParse("2023-12-25"), models.SlotLunch, models.CompletionAteExact, nil)

	r, ok, err := store.Bounds(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("Bounds() = ok %v err %v", ok, err)
	}
	if r.String() != "2023-12-25..2024-05-03" {
		t.Errorf("Bounds() = %v, want 2023-12-25..2024-05-03", r)
	}
}
