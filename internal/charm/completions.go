// ABOUTME: Completion store over KV keys completion:<user>:<date>:<slot>
// ABOUTME: Values are JSON rows; the key is authoritative for user, date and slot
package charm

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
	"github.com/harper/mealstreak/internal/storage"
)

// CompletionPrefix prefixes every completion key
const CompletionPrefix = "completion:"

var _ storage.CompletionStore = (*Client)(nil)

// CompletionKey generates the key for one (user, date, slot)
func CompletionKey(userID string, date calendar.Day, mealSlot string) string {
	return UserPrefix(userID) + date.String() + ":" + mealSlot
}

// UserPrefix is the key prefix shared by all of a user's completions
func UserPrefix(userID string) string {
	return CompletionPrefix + userID + ":"
}

// parseCompletionKey splits the date and slot out of a user's key
func parseCompletionKey(userID, key string) (date, slot string, ok bool) {
	rest, found := strings.CutPrefix(key, UserPrefix(userID))
	if !found {
		return "", "", false
	}
	date, slot, ok = strings.Cut(rest, ":")
	return date, slot, ok
}

// Upsert writes the record for (userID, date, mealSlot)
func (c *Client) Upsert(ctx context.Context, userID string, date calendar.Day, mealSlot string, completion models.Completion, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return storage.NewIOError("upsert", err)
	}
	if err := storage.CheckUpsert(userID, date, mealSlot, completion); err != nil {
		return err
	}
	slot := strings.TrimSpace(mealSlot)

	data, err := json.Marshal(storage.NewRow(userID, date, slot, completion, completedAt))
	if err != nil {
		return storage.NewDataError("upsert", err)
	}
	if err := c.Set(CompletionKey(userID, date, slot), data); err != nil {
		return storage.NewIOError("upsert", err)
	}
	return nil
}

// Delete removes the record for (userID, date, mealSlot)
func (c *Client) Delete(ctx context.Context, userID string, date calendar.Day, mealSlot string) error {
	if err := ctx.Err(); err != nil {
		return storage.NewIOError("delete", err)
	}
	if err := storage.CheckKey("delete", userID, date, mealSlot); err != nil {
		return err
	}

	if err := c.DeleteKey(CompletionKey(userID, date, strings.TrimSpace(mealSlot))); err != nil {
		return storage.NewIOError("delete", err)
	}
	return nil
}

// Query returns userID's rows dated inside r, ordered by date then slot.
// A value that is not valid JSON still yields a row built from its key with
// an empty completion, so the reconciler can report and skip it.
func (c *Client) Query(ctx context.Context, userID string, r calendar.Range) ([]storage.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.NewIOError("query", err)
	}
	if err := storage.CheckUserID("query", userID); err != nil {
		return nil, err
	}

	keys, err := c.ListKeys(UserPrefix(userID))
	if err != nil {
		return nil, storage.NewIOError("query", err)
	}
	sort.Strings(keys)

	var rows []storage.Row
	for _, key := range keys {
		date, slot, ok := parseCompletionKey(userID, key)
		if !ok {
			continue
		}
		day, err := calendar.Parse(date)
		if err != nil {
			// surface it so the caller logs the bad key
			rows = append(rows, storage.Row{UserID: userID, Date: date, MealSlot: slot})
			continue
		}
		if !r.Contains(day) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, storage.NewIOError("query", err)
		}

		data, err := c.Get(key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storage.NewIOError("query", err)
		}

		row := storage.Row{UserID: userID, Date: date, MealSlot: slot}
		var stored storage.Row
		if err := json.Unmarshal(data, &stored); err == nil {
			row.Completion = stored.Completion
			row.CompletedAt = stored.CompletedAt
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CountCompletions returns how many completion keys userID has
func (c *Client) CountCompletions(userID string) (int, error) {
	if err := storage.CheckUserID("count", userID); err != nil {
		return 0, err
	}
	keys, err := c.ListKeys(UserPrefix(userID))
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
