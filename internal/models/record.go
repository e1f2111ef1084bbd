// ABOUTME: CompletionRecord is one logged fact about a meal slot on a calendar day
// ABOUTME: Keyed by (date, meal slot) within a user's log
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/harper/mealstreak/internal/calendar"
)

// Well-known meal slots. Any non-empty slot name is accepted.
const (
	SlotBreakfast  = "breakfast"
	SlotLunch      = "lunch"
	SlotDinner     = "dinner"
	SlotLoggedMeal = "logged_meal"
)

// CompletionRecord is a single meal completion on a normalized calendar day
type CompletionRecord struct {
	Date        calendar.Day `json:"date" yaml:"date"`
	MealSlot    string       `json:"meal_slot" yaml:"meal_slot"`
	Completion  Completion   `json:"completion" yaml:"completion"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// RecordKey is the natural key of a record within one user's log
type RecordKey struct {
	Date     calendar.Day
	MealSlot string
}

// Key returns the record's natural key
func (r CompletionRecord) Key() RecordKey {
	return RecordKey{Date: r.Date, MealSlot: r.MealSlot}
}

// NormalizeSlot trims a slot name and rejects empty ones
func NormalizeSlot(slot string) (string, error) {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return "", fmt.Errorf("meal slot cannot be empty")
	}
	return slot, nil
}

// NewCompletionRecord validates and builds a live record
func NewCompletionRecord(date calendar.Day, slot string, completion Completion, completedAt *time.Time) (*CompletionRecord, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("date cannot be empty")
	}
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return nil, err
	}
	if _, err := ParseCompletion(string(completion)); err != nil {
		return nil, err
	}
	if !completion.IsDone() {
		return nil, fmt.Errorf("a %q completion is a deletion, not a record", completion)
	}

	return &CompletionRecord{
		Date:        date,
		MealSlot:    slot,
		Completion:  completion,
		CompletedAt: completedAt,
	}, nil
}
