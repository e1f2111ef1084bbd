// ABOUTME: Derived per-day and streak state computed from completion records
// ABOUTME: Never persisted; always rebuilt from the cached records
package models

import "github.com/harper/mealstreak/internal/calendar"

// DayCompletionState says whether a calendar day satisfied the day rule
type DayCompletionState struct {
	Date       calendar.Day `json:"date" yaml:"date"`
	IsComplete bool         `json:"is_complete" yaml:"is_complete"`
}

// StreakSummary holds the streak counters for the cached window
type StreakSummary struct {
	CurrentStreak      int           `json:"current_streak" yaml:"current_streak"`
	BestStreak         int           `json:"best_streak" yaml:"best_streak"`
	TotalCompletedDays int           `json:"total_completed_days" yaml:"total_completed_days"`
	LastCompletedDate  *calendar.Day `json:"last_completed_date,omitempty" yaml:"last_completed_date,omitempty"`
}
