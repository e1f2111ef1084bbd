// ABOUTME: Wires configuration, storage backend, auth signal and orchestrator
// ABOUTME: Shared by the mealstreak CLI and the stdio MCP server
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/harper/mealstreak/internal/calendar"
	"github.com/harper/mealstreak/internal/charm"
	"github.com/harper/mealstreak/internal/config"
	"github.com/harper/mealstreak/internal/core"
	"github.com/harper/mealstreak/internal/models"
	"github.com/harper/mealstreak/internal/storage"
	"github.com/harper/mealstreak/internal/storage/sqlite"
	"github.com/harper/mealstreak/internal/util"
)

// App is a configured mealstreak instance
type App struct {
	Config       *config.Config
	Logger       *log.Logger
	Store        storage.CompletionStore
	Auth         core.AuthSignal
	Orchestrator *core.Orchestrator

	// backend handles; exactly one is set by Open
	SQLite *sqlite.Completions
	Charm  *charm.Client

	closer io.Closer
}

// NewLogger creates the structured logger used across the app
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "mealstreak",
		ReportTimestamp: level == log.DebugLevel,
	})
}

// New assembles an App around an already open store
func New(cfg *config.Config, store storage.CompletionStore, auth core.AuthSignal, logger *log.Logger, opts ...core.Option) *App {
	if logger == nil {
		logger = NewLogger(os.Stderr, cfg.Level())
	}

	base := []core.Option{
		core.WithLogger(logger),
		core.WithLocation(cfg.Location()),
		core.WithDayRule(cfg.Rule()),
		core.WithTrailingDays(cfg.TrailingDays),
		core.WithWeekStart(cfg.FirstWeekday()),
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		Auth:         auth,
		Orchestrator: core.New(store, auth, append(base, opts...)...),
	}
}

// Open opens the configured backend and builds an App on it
func Open(cfg *config.Config, logger *log.Logger, opts ...core.Option) (*App, error) {
	if logger == nil {
		logger = NewLogger(os.Stderr, cfg.Level())
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		store := sqlite.NewCompletions(db)
		a := New(cfg, store, core.NewManualAuth(core.SignedIn(cfg.UserID)), logger, opts...)
		a.SQLite = store
		a.closer = db
		logger.Debug("opened sqlite backend", "path", cfg.DBPath, "user", cfg.UserID)
		return a, nil

	case config.BackendCharm:
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
			Offline:  cfg.CharmOffline,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Charm: %w", err)
		}

		var auth core.AuthSignal
		if cfg.CharmOffline {
			auth = core.NewManualAuth(core.SignedIn(cfg.UserID))
		} else {
			auth = charm.NewClientIdentity(client, cfg.AuthPoll, logger)
		}
		a := New(cfg, client, auth, logger, opts...)
		a.Charm = client
		a.closer = client
		logger.Debug("opened charm backend", "host", cfg.CharmHost, "db", cfg.CharmDBName, "offline", cfg.CharmOffline)
		return a, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Start applies the current auth state, loading the initial windows. A
// signed-out start succeeds with empty state.
func (a *App) Start(ctx context.Context) error {
	state := a.Auth.Current()
	return a.retry(ctx, func(ctx context.Context) error {
		if a.Orchestrator.Session() != state {
			return a.Orchestrator.HandleAuthChange(ctx, state)
		}
		if !state.Authenticated {
			return nil
		}
		return a.Orchestrator.Reload(ctx)
	})
}

// Watch follows the auth signal and the day boundary until ctx is done
func (a *App) Watch(ctx context.Context, tick time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Orchestrator.Run(ctx)
	})
	g.Go(func() error {
		return a.watchDay(ctx, tick)
	})
	return g.Wait()
}

// watchDay reloads when the local day moves past the last published one so
// the week and trailing windows follow today
func (a *App) watchDay(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = time.Minute
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := a.Snapshot().Today
	if last.IsZero() {
		last = a.Today()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		today := a.Today()
		if today == last {
			continue
		}
		last = today
		a.Logger.Info("day rolled over", "today", today.String())

		if !a.Orchestrator.Session().Authenticated {
			a.Orchestrator.Refresh()
			continue
		}
		if err := a.Reload(ctx); err != nil {
			a.Logger.Warn("reload after day rollover failed", "err", err)
			a.Orchestrator.Refresh()
		}
	}
}

// Close releases the backend
func (a *App) Close() error {
	a.Orchestrator.State().Close()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *App) retry(ctx context.Context, fn func(context.Context) error) error {
	return util.Retry(ctx, a.Config.MaxRetries, a.Config.RetryDelay, storage.IsRetryable, fn)
}

// MarkMeal records a completion, retrying transient store failures
func (a *App) MarkMeal(ctx context.Context, at time.Time, slot string, completion models.Completion) error {
	return a.retry(ctx, func(ctx context.Context) error {
		return a.Orchestrator.MarkMeal(ctx, at, slot, completion)
	})
}

// FetchCompletions reads a range, retrying transient store failures
func (a *App) FetchCompletions(ctx context.Context, r calendar.Range) ([]models.CompletionRecord, error) {
	var records []models.CompletionRecord
	err := a.retry(ctx, func(ctx context.Context) error {
		var err error
		records, err = a.Orchestrator.FetchCompletions(ctx, r)
		return err
	})
	return records, err
}

// Reload refetches the sign-in windows, retrying transient store failures
func (a *App) Reload(ctx context.Context) error {
	return a.retry(ctx, a.Orchestrator.Reload)
}

// Snapshot returns the latest derived state
func (a *App) Snapshot() core.Snapshot {
	return a.Orchestrator.Snapshot()
}

// Today returns the current day in the configured zone
func (a *App) Today() calendar.Day {
	return a.Orchestrator.Today()
}

// Day returns the instant that MarkMeal should use for day
func (a *App) Day(day calendar.Day) time.Time {
	return day.Midnight(a.Config.Location())
}

// Export builds an export of r from the store with streaks derived over r
func (a *App) Export(ctx context.Context, r calendar.Range) (*storage.ExportData, error) {
	records, err := a.FetchCompletions(ctx, r)
	if err != nil {
		return nil, err
	}

	// derive only the days that have records; r may span millennia
	byDay := make(map[calendar.Day][]models.CompletionRecord)
	for _, rec := range records {
		byDay[rec.Date] = append(byDay[rec.Date], rec)
	}
	days := make([]models.DayCompletionState, 0, len(byDay))
	for day, recs := range byDay {
		days = append(days, models.DayCompletionState{Date: day, IsComplete: core.EvaluateDay(day, recs, a.Config.Rule())})
	}
	slices.SortFunc(days, func(x, y models.DayCompletionState) int {
		return x.Date.Compare(y.Date)
	})

	today := a.Today()
	return storage.NewExport(a.Orchestrator.Session().UserID, a.Config.Rule(), r, records, days,
		core.CalculateStreak(days, today), time.Now()), nil
}
