// ABOUTME: StreakCalculator derives current and best streaks from day states
// ABOUTME: Single ascending pass; today must be complete for a current streak
package core

import (
	"sort"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
)

// CalculateStreak walks days in ascending date order and returns the streak
// counters as of today.
//
// Days after today are ignored. Consecutive complete days (by calendar, not
// by 24h interval) extend the running streak; an incomplete day resets it.
// The current streak is only reported when the latest day in the sequence
// is today and is complete, so an unfinished today shows 0 rather than
// yesterday's run.
func CalculateStreak(days []models.DayCompletionState, today calendar.Day) models.StreakSummary {
	ordered := days
	if !sort.SliceIsSorted(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) }) {
		ordered = make([]models.DayCompletionState, len(days))
		copy(ordered, days)
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })
	}

	var (
		summary      models.StreakSummary
		running      int
		prevDone     calendar.Day
		havePrevDone bool
		last         *models.DayCompletionState
	)

	for i := range ordered {
		day := ordered[i]
		if day.Date.After(today) {
			break
		}
		if last != nil && last.Date == day.Date {
			// duplicate entry for a date already counted
			continue
		}
		last = &ordered[i]

		if !day.IsComplete {
			running = 0
			havePrevDone = false
			continue
		}

		if havePrevDone && calendar.IsNextDay(prevDone, day.Date) {
			running++
		} else {
			running = 1
		}
		prevDone = day.Date
		havePrevDone = true

		summary.TotalCompletedDays++
		completed := day.Date
		summary.LastCompletedDate = &completed
		if running > summary.BestStreak {
			summary.BestStreak = running
		}
	}

	if last != nil && last.Date == today && last.IsComplete {
		summary.CurrentStreak = running
	}
	return summary
}
