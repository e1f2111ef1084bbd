// ABOUTME: Observable published state for UI and API consumers
// ABOUTME: Snapshots are immutable; subscribers always see the latest one
package core

import (
	"sync"

	"github.com/google/uuid"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
)

// Snapshot is one published view of derived state. Consumers must treat it
// as read-only.
type Snapshot struct {
	Version       uint64                      `json:"version"`
	Generation    uint64                      `json:"generation"`
	UserID        string                      `json:"user_id,omitempty"`
	Today         calendar.Day                `json:"today"`
	Days          []models.DayCompletionState `json:"days"`
	DayIsComplete map[calendar.Day]bool       `json:"-"`
	Streak        models.StreakSummary        `json:"streak"`
}

// IsComplete reports the published completion flag for day. Days that were
// never loaded or have no records report false.
func (s Snapshot) IsComplete(day calendar.Day) bool {
	return s.DayIsComplete[day]
}

// StateHub fans snapshots out to subscribers. A slow subscriber never blocks
// publishing; it skips straight to the newest snapshot.
type StateHub struct {
	mu      sync.RWMutex
	current Snapshot
	subs    map[string]chan Snapshot
	closed  bool
}

// NewStateHub creates a hub holding an empty snapshot
func NewStateHub() *StateHub {
	return &StateHub{
		current: Snapshot{DayIsComplete: map[calendar.Day]bool{}},
		subs:    make(map[string]chan Snapshot),
	}
}

// Current returns the latest published snapshot
func (h *StateHub) Current() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers a subscriber. The channel immediately holds the
// current snapshot and is closed by Unsubscribe or Close.
func (h *StateHub) Subscribe() (string, <-chan Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Snapshot, 1)
	if h.closed {
		close(ch)
		return id, ch
	}
	ch <- h.current
	h.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (h *StateHub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Close closes every subscriber channel. Later publishes only update Current.
func (h *StateHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.closed = true
}

func (h *StateHub) publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = s
	for _, ch := range h.subs {
		select {
		case ch <- s:
		default:
			// drop the stale pending snapshot; publish is the only sender
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}
