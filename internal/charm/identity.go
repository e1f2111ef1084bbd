// ABOUTME: Auth signal backed by the charm account identity
// ABOUTME: Polls the charm user ID and reports sign-in, sign-out and user switches
package charm

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/mealstreak/internal/core"
)

// IdentitySignal reports the charm account as the signed-in user. Any
// failure to resolve the ID (no keys, server unreachable) reads as signed
// out.
type IdentitySignal struct {
	resolve  func() (string, error)
	interval time.Duration
	logger   *log.Logger

	mu       sync.Mutex
	state    core.AuthState
	resolved bool
}

var _ core.AuthSignal = (*IdentitySignal)(nil)

// NewIdentitySignal creates a signal that calls resolve every interval
func NewIdentitySignal(resolve func() (string, error), interval time.Duration, logger *log.Logger) *IdentitySignal {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &IdentitySignal{resolve: resolve, interval: interval, logger: logger}
}

// NewClientIdentity creates a signal for the client's charm account
func NewClientIdentity(c *Client, interval time.Duration, logger *log.Logger) *IdentitySignal {
	return NewIdentitySignal(c.ID, interval, logger)
}

// Refresh resolves the identity now and returns the new state
func (s *IdentitySignal) Refresh() core.AuthState {
	id, err := s.resolve()
	state := core.SignedIn(id)
	if err != nil || id == "" {
		s.logger.Debug("charm identity unavailable", "err", err)
		state = core.SignedOut()
	}

	s.mu.Lock()
	s.state = state
	s.resolved = true
	s.mu.Unlock()
	return state
}

// Current returns the last resolved state, resolving once if needed
func (s *IdentitySignal) Current() core.AuthState {
	s.mu.Lock()
	state, resolved := s.state, s.resolved
	s.mu.Unlock()

	if !resolved {
		return s.Refresh()
	}
	return state
}

// Watch polls the identity until ctx is done and emits each change
func (s *IdentitySignal) Watch(ctx context.Context) <-chan core.AuthState {
	ch := make(chan core.AuthState, 1)
	last := s.Current()

	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			state := s.Refresh()
			if state == last {
				continue
			}
			last = state
			s.logger.Info("charm identity changed", "authenticated", state.Authenticated, "user", state.UserID)

			select {
			case ch <- state:
			default:
				// replace the pending state with the newer one
				select {
				case <-ch:
				default:
				}
				ch <- state
			}
		}
	}()

	return ch
}
