// ABOUTME: SyncOrchestrator owns the local cache and published derived state
// ABOUTME: Drives reloads on auth transitions and writes through to the store
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/models"
	"github.com/harper/mealstreak/internal/storage"
)

// DefaultTrailingDays is the trailing window loaded on sign-in
const DefaultTrailingDays = 30

var (
	// ErrNotAuthenticated is returned by operations that need a session
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionChanged is returned when the session changed while a write
	// was in flight; the remote write may have landed but the local cache
	// was not touched.
	ErrSessionChanged = errors.New("session changed during write")
	// ErrInvalidMealSlot is returned for an empty meal slot
	ErrInvalidMealSlot = errors.New("invalid meal slot")
)

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocation sets the zone used to normalize instants into days
func WithLocation(loc *time.Location) Option {
	return func(o *Orchestrator) {
		o.norm = calendar.NewNormalizer(loc)
	}
}

// WithDayRule sets the day completion rule
func WithDayRule(rule models.DayRule) Option {
	return func(o *Orchestrator) {
		o.rule = rule
	}
}

// WithTrailingDays sets how many days ending today are loaded on sign-in
func WithTrailingDays(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.trailingDays = n
		}
	}
}

// WithWeekStart sets the first day of the "current week" window
func WithWeekStart(day time.Weekday) Option {
	return func(o *Orchestrator) {
		o.weekStart = day
	}
}

// Orchestrator coordinates the store, the cache and the published state.
//
// Cache mutation, derivation and publishing happen under mu, so consumers
// never observe a half-applied update. Store I/O happens outside mu.
type Orchestrator struct {
	store      storage.CompletionStore
	auth       AuthSignal
	reconciler *Reconciler
	hub        *StateHub
	logger     *log.Logger

	rule         models.DayRule
	norm         calendar.Normalizer
	now          func() time.Time
	trailingDays int
	weekStart    time.Weekday

	mu         sync.Mutex
	cache      *cache
	dayStates  map[calendar.Day]bool
	session    AuthState
	cancelLoad context.CancelFunc // cancels the in-flight sign-in load
	epoch      uint64             // bumped on every auth transition
	loadSeq    uint64             // bumped on every full reload
	version    uint64
}

// New creates an Orchestrator. auth may be nil when the caller drives
// HandleAuthChange directly.
func New(store storage.CompletionStore, auth AuthSignal, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:        store,
		auth:         auth,
		hub:          NewStateHub(),
		logger:       log.Default(),
		rule:         models.RuleAnyMeal,
		norm:         calendar.NewNormalizer(time.Local),
		now:          time.Now,
		trailingDays: DefaultTrailingDays,
		weekStart:    time.Monday,
		cache:        newCache(),
		dayStates:    make(map[calendar.Day]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.reconciler = NewReconciler(store, o.logger)
	return o
}

// State returns the hub publishing derived snapshots
func (o *Orchestrator) State() *StateHub {
	return o.hub
}

// Snapshot returns the latest published snapshot
func (o *Orchestrator) Snapshot() Snapshot {
	return o.hub.Current()
}

// Session returns the session the orchestrator is currently serving
func (o *Orchestrator) Session() AuthState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Today returns the current normalized day
func (o *Orchestrator) Today() calendar.Day {
	return o.norm.Today(o.now())
}

// Records returns the cached records ordered by date then slot
func (o *Orchestrator) Records() []models.CompletionRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cache.records()
}

// Windows returns the ranges a full reload covers for today
func (o *Orchestrator) Windows() []calendar.Range {
	today := o.Today()
	return []calendar.Range{
		calendar.Week(today, o.weekStart),
		calendar.Trailing(today, o.trailingDays),
	}
}

// Run applies the signal's current state and then every transition until
// ctx is done. Transitions are applied in order on this goroutine; the
// sign-in reload runs in the background so a later sign-out is never held
// behind it. Reload failures are logged; the next transition or an explicit
// Reload retries.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.auth == nil {
		return errors.New("orchestrator has no auth signal")
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	apply := func(state AuthState) {
		loadCtx, epoch, userID, load := o.transition(ctx, state)
		if !load {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer o.finishLoad(epoch)
			if err := o.reload(loadCtx, epoch, userID); err != nil {
				o.logger.Warn("reload after auth change failed", "user", userID, "err", err)
			}
		}()
	}

	changes := o.auth.Watch(ctx)
	apply(o.auth.Current())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state, ok := <-changes:
			if !ok {
				return ctx.Err()
			}
			apply(state)
		}
	}
}

// HandleAuthChange applies an auth observation. Signing out clears all
// cached and derived state immediately. Signing in (or switching user)
// clears and then reloads the current week and the trailing window before
// returning. Repeating the current state is a no-op.
func (o *Orchestrator) HandleAuthChange(ctx context.Context, state AuthState) error {
	loadCtx, epoch, userID, load := o.transition(ctx, state)
	if !load {
		return nil
	}
	defer o.finishLoad(epoch)
	return o.reload(loadCtx, epoch, userID)
}

// transition swaps the session and clears cached state. Any load started by
// an earlier transition is cancelled. When the new state is signed in it
// returns the context and epoch the sign-in load must run under.
func (o *Orchestrator) transition(ctx context.Context, state AuthState) (context.Context, uint64, string, bool) {
	if state.Authenticated && state.UserID == "" {
		o.logger.Warn("authenticated without a user id; treating as signed out")
		state = SignedOut()
	}
	if !state.Authenticated {
		state.UserID = ""
	}

	o.mu.Lock()
	if state == o.session {
		o.mu.Unlock()
		return nil, 0, "", false
	}
	o.epoch++
	epoch := o.epoch
	previous := o.session
	if o.cancelLoad != nil {
		o.cancelLoad()
		o.cancelLoad = nil
	}
	var loadCtx context.Context
	if state.Authenticated {
		loadCtx, o.cancelLoad = context.WithCancel(ctx)
	}
	o.session = state
	o.cache.clear()
	o.dayStates = make(map[calendar.Day]bool)
	o.publishLocked()
	o.mu.Unlock()

	if !state.Authenticated {
		o.logger.Info("signed out; cleared completion state", "user", previous.UserID)
		return nil, epoch, "", false
	}
	o.logger.Info("signed in; reloading completions", "user", state.UserID)
	return loadCtx, epoch, state.UserID, true
}

// finishLoad releases the sign-in load context of epoch if no later
// transition has already cancelled it.
func (o *Orchestrator) finishLoad(epoch uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.epoch == epoch && o.cancelLoad != nil {
		o.cancelLoad()
		o.cancelLoad = nil
	}
}

// Reload refetches the current week and trailing window for the session
func (o *Orchestrator) Reload(ctx context.Context) error {
	o.mu.Lock()
	if !o.session.Authenticated {
		o.mu.Unlock()
		return ErrNotAuthenticated
	}
	epoch, userID := o.epoch, o.session.UserID
	o.mu.Unlock()

	return o.reload(ctx, epoch, userID)
}

func (o *Orchestrator) reload(ctx context.Context, epoch uint64, userID string) error {
	windows := o.Windows()

	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		return nil
	}
	o.loadSeq++
	seq := o.loadSeq
	o.mu.Unlock()

	records, err := o.reconciler.LoadWindow(ctx, userID, windows...)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		if o.epoch != epoch {
			o.logger.Debug("reload abandoned after session change", "user", userID, "err", err)
			return nil
		}
		return fmt.Errorf("failed to reload completions: %w", err)
	}

	if o.epoch != epoch || o.loadSeq != seq {
		o.logger.Debug("discarding superseded reload", "user", userID)
		return nil
	}
	for _, w := range windows {
		o.reconciler.applyWindow(o.cache, w, records)
	}
	o.rederiveAllLocked()
	o.publishLocked()
	return nil
}

// FetchCompletions reads r from the store, replaces the cached slice for r
// and republishes derived state. The records are returned either way unless
// the session changed during the read.
func (o *Orchestrator) FetchCompletions(ctx context.Context, r calendar.Range) ([]models.CompletionRecord, error) {
	o.mu.Lock()
	if !o.session.Authenticated {
		o.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	epoch, seq, userID := o.epoch, o.loadSeq, o.session.UserID
	o.mu.Unlock()

	records, err := o.reconciler.LoadWindow(ctx, userID, r)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.epoch != epoch {
		return nil, ErrSessionChanged
	}
	if o.loadSeq != seq {
		// a newer full reload already covers this data
		o.logger.Debug("not applying fetch older than latest reload", "range", r.String())
		return records, nil
	}
	o.reconciler.applyWindow(o.cache, r, records)
	o.rederiveAllLocked()
	o.publishLocked()
	return records, nil
}

// MarkMeal records a completion for the meal slot on the day containing at.
// CompletionNone deletes the record. The store is written first; the cache
// only changes after the store accepts the write.
func (o *Orchestrator) MarkMeal(ctx context.Context, at time.Time, slot string, completion models.Completion) error {
	slot, err := models.NormalizeSlot(slot)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMealSlot, err)
	}
	if _, err := models.ParseCompletion(string(completion)); err != nil {
		return err
	}
	day := o.norm.Normalize(at)

	o.mu.Lock()
	if !o.session.Authenticated {
		o.mu.Unlock()
		return ErrNotAuthenticated
	}
	epoch, userID := o.epoch, o.session.UserID
	o.mu.Unlock()

	completedAt := o.now()
	if completion == models.CompletionNone {
		err = o.store.Delete(ctx, userID, day, slot)
	} else {
		err = o.store.Upsert(ctx, userID, day, slot, completion, &completedAt)
	}
	if err != nil {
		return fmt.Errorf("failed to mark %s %s as %s: %w", day, slot, completion, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.epoch != epoch {
		o.logger.Debug("dropping write from previous session", "user", userID, "date", day.String(), "slot", slot)
		return ErrSessionChanged
	}
	if completion == models.CompletionNone {
		o.cache.remove(day, slot)
	} else {
		o.cache.put(models.CompletionRecord{
			Date:        day,
			MealSlot:    slot,
			Completion:  completion,
			CompletedAt: &completedAt,
		})
	}
	o.rederiveDayLocked(day)
	o.publishLocked()
	return nil
}

// Refresh re-derives and republishes without touching the store. Used when
// the day rolls over.
func (o *Orchestrator) Refresh() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rederiveAllLocked()
	o.publishLocked()
}

func (o *Orchestrator) rederiveAllLocked() {
	o.dayStates = make(map[calendar.Day]bool)
	for _, day := range o.cache.sortedDays() {
		o.dayStates[day] = EvaluateDay(day, o.cache.recordsFor(day), o.rule)
	}
}

func (o *Orchestrator) rederiveDayLocked(day calendar.Day) {
	if !o.cache.has(day) {
		delete(o.dayStates, day)
		return
	}
	o.dayStates[day] = EvaluateDay(day, o.cache.recordsFor(day), o.rule)
}

func (o *Orchestrator) publishLocked() {
	today := o.Today()

	days := make([]models.DayCompletionState, 0, len(o.dayStates))
	flags := make(map[calendar.Day]bool, len(o.dayStates))
	for _, day := range o.cache.sortedDays() {
		complete, ok := o.dayStates[day]
		if !ok {
			continue
		}
		days = append(days, models.DayCompletionState{Date: day, IsComplete: complete})
		flags[day] = complete
	}

	o.version++
	o.hub.publish(Snapshot{
		Version:       o.version,
		Generation:    o.epoch,
		UserID:        o.session.UserID,
		Today:         today,
		Days:          days,
		DayIsComplete: flags,
		Streak:        CalculateStreak(days, today),
	})
}
