// ABOUTME: SQLite-backed completion store
// ABOUTME: Upserts on (user, date, meal slot) and queries inclusive date ranges
package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
	"github.com/harper/mealstreak/internal/storage"
)

// Completions implements storage.CompletionStore on a SQLite database
type Completions struct {
	db *DB
}

var _ storage.CompletionStore = (*Completions)(nil)

// NewCompletions creates a completion store on db
func NewCompletions(db *DB) *Completions {
	return &Completions{db: db}
}

// Upsert writes the record for (userID, date, mealSlot), replacing any
// existing completion for that key
func (c *Completions) Upsert(ctx context.Context, userID string, date calendar.Day, mealSlot string, completion models.Completion, completedAt *time.Time) error {
	if err := storage.CheckUpsert(userID, date, mealSlot, completion); err != nil {
		return err
	}
	row := storage.NewRow(userID, date, strings.TrimSpace(mealSlot), completion, completedAt)

	_, err := c.db.conn.ExecContext(ctx, `
		INSERT INTO completions (id, user_id, date, meal_slot, completion, completed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, date, meal_slot) DO UPDATE SET
			completion = excluded.completion,
			completed_at = excluded.completed_at,
			updated_at = CURRENT_TIMESTAMP
	`, uuid.New().String(), row.UserID, row.Date, row.MealSlot, row.Completion, row.CompletedAt)
	if err != nil {
		return storage.NewIOError("upsert", err)
	}
	return nil
}

// Delete removes the record for (userID, date, mealSlot). Deleting a
// missing record is not an error.
func (c *Completions) Delete(ctx context.Context, userID string, date calendar.Day, mealSlot string) error {
	if err := storage.CheckKey("delete", userID, date, mealSlot); err != nil {
		return err
	}

	_, err := c.db.conn.ExecContext(ctx,
		`DELETE FROM completions WHERE user_id = ? AND date = ? AND meal_slot = ?`,
		userID, date.String(), strings.TrimSpace(mealSlot))
	if err != nil {
		return storage.NewIOError("delete", err)
	}
	return nil
}

// Query returns userID's rows dated inside r, ordered by date then slot
func (c *Completions) Query(ctx context.Context, userID string, r calendar.Range) ([]storage.Row, error) {
	rows, err := c.db.conn.QueryContext(ctx, `
		SELECT user_id, date, meal_slot, completion, completed_at
		FROM completions
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date, meal_slot
	`, userID, r.Start.String(), r.End.String())
	if err != nil {
		return nil, storage.NewIOError("query", err)
	}
	defer func() { _ = rows.Close() }()

	var out []storage.Row
	for rows.Next() {
		var (
			row         storage.Row
			completedAt sql.NullString
		)
		if err := rows.Scan(&row.UserID, &row.Date, &row.MealSlot, &row.Completion, &completedAt); err != nil {
			return nil, storage.NewIOError("query", err)
		}
		if completedAt.Valid {
			ts := completedAt.String
			row.CompletedAt = &ts
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.NewIOError("query", err)
	}
	return out, nil
}

// Count returns how many records userID has
func (c *Completions) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := c.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM completions WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, storage.NewIOError("count", err)
	}
	return n, nil
}

// Bounds returns the earliest and latest dates userID has records for.
// ok is false when there are none.
func (c *Completions) Bounds(ctx context.Context, userID string) (r calendar.Range, ok bool, err error) {
	var first, last sql.NullString
	err = c.db.conn.QueryRowContext(ctx,
		`SELECT MIN(date), MAX(date) FROM completions WHERE user_id = ?`, userID).Scan(&first, &last)
	if err != nil {
		return calendar.Range{}, false, storage.NewIOError("bounds", err)
	}
	if !first.Valid || !last.Valid {
		return calendar.Range{}, false, nil
	}
	r, err = calendar.ParseRange(first.String, last.String)
	if err != nil {
		return calendar.Range{}, false, storage.NewDataError("bounds", err)
	}
	return r, true, nil
}
