// ABOUTME: DayCompletionEvaluator reduces one day's records to a completion flag
// ABOUTME: Pure function of the records and the configured day rule
package core

import (
	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
)

// EvaluateDay reports whether date is complete under rule. Records for other
// dates and records with a "none" completion are ignored. Unknown rules are
// evaluated as RuleAnyMeal.
func EvaluateDay(date calendar.Day, records []models.CompletionRecord, rule models.DayRule) bool {
	done := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.Date != date || !rec.Completion.IsDone() {
			continue
		}
		done[rec.MealSlot] = true
	}

	if rule == models.RuleAllMeals {
		for _, slot := range models.RequiredSlots {
			if !done[slot] {
				return false
			}
		}
		return true
	}

	return len(done) > 0
}
