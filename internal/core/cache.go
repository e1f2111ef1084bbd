// ABOUTME: Local cache of completion records keyed by normalized calendar day
// ABOUTME: Only the reconciler and the orchestrator's single-key update mutate it
package core

import (
	"sort"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
)

// cache maps a calendar day to its records by meal slot. A day with no
// records is never present as a key.
type cache struct {
	days map[calendar.Day]map[string]models.CompletionRecord
}

func newCache() *cache {
	return &cache{days: make(map[calendar.Day]map[string]models.CompletionRecord)}
}

// put inserts or replaces the record for its (date, slot) key.
func (c *cache) put(rec models.CompletionRecord) {
	slots, ok := c.days[rec.Date]
	if !ok {
		slots = make(map[string]models.CompletionRecord)
		c.days[rec.Date] = slots
	}
	slots[rec.MealSlot] = rec
}

func (c *cache) remove(day calendar.Day, slot string) {
	slots, ok := c.days[day]
	if !ok {
		return
	}
	delete(slots, slot)
	if len(slots) == 0 {
		delete(c.days, day)
	}
}

// replaceRange drops every cached day inside r and then inserts the records
// dated inside r. Records outside r are ignored.
func (c *cache) replaceRange(r calendar.Range, records []models.CompletionRecord) {
	for day := range c.days {
		if r.Contains(day) {
			delete(c.days, day)
		}
	}
	for _, rec := range records {
		if r.Contains(rec.Date) && rec.Completion.IsDone() {
			c.put(rec)
		}
	}
}

func (c *cache) clear() {
	c.days = make(map[calendar.Day]map[string]models.CompletionRecord)
}

func (c *cache) has(day calendar.Day) bool {
	_, ok := c.days[day]
	return ok
}

// recordsFor returns the day's records sorted by slot.
func (c *cache) recordsFor(day calendar.Day) []models.CompletionRecord {
	slots := c.days[day]
	out := make([]models.CompletionRecord, 0, len(slots))
	for _, rec := range slots {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MealSlot < out[j].MealSlot })
	return out
}

// sortedDays returns the cached days in ascending order.
func (c *cache) sortedDays() []calendar.Day {
	out := make([]calendar.Day, 0, len(c.days))
	for day := range c.days {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// records returns every cached record ordered by date then slot.
func (c *cache) records() []models.CompletionRecord {
	var out []models.CompletionRecord
	for _, day := range c.sortedDays() {
		out = append(out, c.recordsFor(day)...)
	}
	return out
}

func (c *cache) len() int {
	n := 0
	for _, slots := range c.days {
		n += len(slots)
	}
	return n
}
