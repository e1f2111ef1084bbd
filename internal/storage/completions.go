// ABOUTME: Contract for the authoritative completion store and its wire row shape
// ABOUTME: Implemented by the SQLite and Charm KV backends
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
)

// Row is a completion record as the remote store holds it. Fields stay as
// strings so a malformed row can be reported and skipped by the caller
// instead of failing the whole query.
type Row struct {
	UserID      string  `json:"user_id"`
	Date        string  `json:"date"`
	MealSlot    string  `json:"meal_slot"`
	Completion  string  `json:"completion"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

// CompletionStore is the keyed upsert/delete/query service behind the cache.
// Writes are last-write-wins on (userID, date, mealSlot).
type CompletionStore interface {
	Upsert(ctx context.Context, userID string, date calendar.Day, mealSlot string, completion models.Completion, completedAt *time.Time) error
	Delete(ctx context.Context, userID string, date calendar.Day, mealSlot string) error
	Query(ctx context.Context, userID string, r calendar.Range) ([]Row, error)
}

// NewRow encodes a record for storage
func NewRow(userID string, date calendar.Day, mealSlot string, completion models.Completion, completedAt *time.Time) Row {
	row := Row{
		UserID:     userID,
		Date:       date.String(),
		MealSlot:   mealSlot,
		Completion: string(completion),
	}
	if completedAt != nil {
		ts := completedAt.Format(time.RFC3339Nano)
		row.CompletedAt = &ts
	}
	return row
}

// Decode parses a stored row back into a record. Any malformed field is a
// data error.
func (r Row) Decode() (models.CompletionRecord, error) {
	date, err := calendar.Parse(r.Date)
	if err != nil {
		return models.CompletionRecord{}, NewDataError("decode", err)
	}
	slot, err := models.NormalizeSlot(r.MealSlot)
	if err != nil {
		return models.CompletionRecord{}, NewDataError("decode", err)
	}
	completion, err := models.ParseCompletion(r.Completion)
	if err != nil {
		return models.CompletionRecord{}, NewDataError("decode", err)
	}

	rec := models.CompletionRecord{
		Date:       date,
		MealSlot:   slot,
		Completion: completion,
	}
	if r.CompletedAt != nil && *r.CompletedAt != "" {
		ts, err := time.Parse(time.RFC3339Nano, *r.CompletedAt)
		if err != nil {
			return models.CompletionRecord{}, NewDataError("decode", err)
		}
		rec.CompletedAt = &ts
	}
	return rec, nil
}

// UserIDSeparator separates key components in keyed backends, so it cannot
// appear in a user id.
const UserIDSeparator = ":"

// CheckUserID validates a user id. Failures are data errors.
func CheckUserID(op, userID string) error {
	switch {
	case strings.TrimSpace(userID) == "":
		return NewDataError(op, errors.New("user id cannot be empty"))
	case strings.Contains(userID, UserIDSeparator):
		return NewDataError(op, fmt.Errorf("user id %q cannot contain %q", userID, UserIDSeparator))
	}
	return nil
}

// CheckKey validates the key of a write. Failures are data errors.
func CheckKey(op, userID string, date calendar.Day, mealSlot string) error {
	if err := CheckUserID(op, userID); err != nil {
		return err
	}
	switch {
	case date.IsZero():
		return NewDataError(op, errors.New("date cannot be empty"))
	case strings.TrimSpace(mealSlot) == "":
		return NewDataError(op, errors.New("meal slot cannot be empty"))
	}
	return nil
}

// CheckUpsert validates an upsert. A "none" completion must go through
// Delete instead.
func CheckUpsert(userID string, date calendar.Day, mealSlot string, completion models.Completion) error {
	if err := CheckKey("upsert", userID, date, mealSlot); err != nil {
		return err
	}
	if _, err := models.ParseCompletion(string(completion)); err != nil {
		return NewDataError("upsert", err)
	}
	if !completion.IsDone() {
		return NewDataError("upsert", fmt.Errorf("%q is not an upsertable completion", completion))
	}
	return nil
}
