// ABOUTME: Day-completion rules that reduce a day's records to a single flag
// ABOUTME: anyMeal needs one completed slot, allMeals needs breakfast, lunch and dinner
package models

import "fmt"

// DayRule selects how a day's records decide whether the day is complete
type DayRule string

const (
	// RuleAnyMeal - complete when at least one slot was eaten
	RuleAnyMeal DayRule = "anyMeal"

	// RuleAllMeals - complete when every required slot was eaten
	RuleAllMeals DayRule = "allMeals"
)

// RequiredSlots are the slots RuleAllMeals checks
var RequiredSlots = []string{SlotBreakfast, SlotLunch, SlotDinner}

// ParseDayRule converts a config string into a DayRule
func ParseDayRule(s string) (DayRule, error) {
	switch r := DayRule(s); r {
	case RuleAnyMeal, RuleAllMeals:
		return r, nil
	default:
		return "", fmt.Errorf("unknown day rule %q (want %s or %s)", s, RuleAnyMeal, RuleAllMeals)
	}
}
