// ABOUTME: ReconciliationEngine loads date windows from the remote store
// ABOUTME: Deduplicates overlapping windows and fully replaces cached slices
package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
	"github.com/harper/mealstreak/internal/storage"
)

// Reconciler pulls windows of records from the store into the local cache
type Reconciler struct {
	store  storage.CompletionStore
	logger *log.Logger
}

// NewReconciler creates a Reconciler. A nil logger uses the package default.
func NewReconciler(store storage.CompletionStore, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{store: store, logger: logger}
}

type dedupKey struct {
	date       calendar.Day
	slot       string
	completion models.Completion
}

// LoadWindow queries every range for userID and returns the union of their
// records, deduplicated on (date, meal slot, completion) and ordered by date
// then slot. Rows that fail to decode are logged and skipped; a query
// failure fails the whole load.
func (r *Reconciler) LoadWindow(ctx context.Context, userID string, ranges ...calendar.Range) ([]models.CompletionRecord, error) {
	results := make([][]storage.Row, len(ranges))

	g, gctx := errgroup.WithContext(ctx)
	for i, rng := range ranges {
		g.Go(func() error {
			rows, err := r.store.Query(gctx, userID, rng)
			if err != nil {
				return fmt.Errorf("failed to load window %s: %w", rng, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[dedupKey]struct{})
	var records []models.CompletionRecord
	for _, rows := range results {
		for _, row := range rows {
			rec, err := row.Decode()
			if err != nil {
				r.logger.Warn("dropping malformed completion row",
					"user", userID, "date", row.Date, "slot", row.MealSlot,
					"completion", row.Completion, "err", err)
				continue
			}
			key := dedupKey{date: rec.Date, slot: rec.MealSlot, completion: rec.Completion}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].MealSlot < records[j].MealSlot
	})

	r.logger.Debug("loaded completion window", "user", userID, "ranges", len(ranges), "records", len(records))
	return records, nil
}

// applyWindow replaces (never merges) the cache's entries for every day in
// rng with the given records.
func (r *Reconciler) applyWindow(c *cache, rng calendar.Range, records []models.CompletionRecord) {
	c.replaceRange(rng, records)
}
