// ABOUTME: In-memory CompletionStore used by the core tests
// ABOUTME: Supports injected failures, raw rows and per-user query gates
package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
	"github.com/harper/mealstreak/internal/storage"
)

type memStore struct {
	mu      sync.Mutex
	rows    map[string]storage.Row
	raw     []storage.Row
	queries int
	writes  int

	queryErr error
	writeErr error

	// queries for a gated user block until the gate is closed
	gates   map[string]chan struct{}
	started chan string

	// writeGate blocks Upsert/Delete until closed
	writeGate    chan struct{}
	writeStarted chan struct{}
}

func newMemStore() *memStore {
	return &memStore{
		rows:         make(map[string]storage.Row),
		gates:        make(map[string]chan struct{}),
		started:      make(chan string, 16),
		writeStarted: make(chan struct{}, 16),
	}
}

func memKey(userID string, date calendar.Day, slot string) string {
	return userID + "|" + date.String() + "|" + slot
}

func (m *memStore) seed(userID, date, slot string, completion models.Completion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := calendar.MustParse(date)
	m.rows[memKey(userID, day, slot)] = storage.NewRow(userID, day, slot, completion, nil)
}

func (m *memStore) gate(userID string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.gates[userID] = ch
	return ch
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memStore) Upsert(ctx context.Context, userID string, date calendar.Day, mealSlot string, completion models.Completion, completedAt *time.Time) error {
	if err := m.waitWrite(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.rows[memKey(userID, date, mealSlot)] = storage.NewRow(userID, date, mealSlot, completion, completedAt)
	return nil
}

func (m *memStore) Delete(ctx context.Context, userID string, date calendar.Day, mealSlot string) error {
	if err := m.waitWrite(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.rows, memKey(userID, date, mealSlot))
	return nil
}

func (m *memStore) waitWrite(ctx context.Context) error {
	m.mu.Lock()
	gate := m.writeGate
	m.mu.Unlock()
	if gate == nil {
		return nil
	}
	m.writeStarted <- struct{}{}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *memStore) Query(ctx context.Context, userID string, r calendar.Range) ([]storage.Row, error) {
	m.mu.Lock()
	gate := m.gates[userID]
	m.mu.Unlock()
	if gate != nil {
		m.started <- userID
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	if m.queryErr != nil {
		return nil, m.queryErr
	}

	var out []storage.Row
	for _, row := range m.rows {
		if row.UserID != userID {
			continue
		}
		day, err := calendar.Parse(row.Date)
		if err != nil || !r.Contains(day) {
			continue
		}
		out = append(out, row)
	}
	for _, row := range m.raw {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].MealSlot < out[j].MealSlot
	})
	return out, nil
}
