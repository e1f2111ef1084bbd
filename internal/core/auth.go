// ABOUTME: Authentication signal consumed by the sync orchestrator
// ABOUTME: ManualAuth is a settable signal for local backends and tests
package core

import (
	"context"
	"sync"
)

// AuthState is one observation of the session. UserID is only meaningful
// while Authenticated is true.
type AuthState struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
}

// SignedIn returns an authenticated state for userID
func SignedIn(userID string) AuthState {
	return AuthState{Authenticated: true, UserID: userID}
}

// SignedOut returns the unauthenticated state
func SignedOut() AuthState {
	return AuthState{}
}

// AuthSignal is an observable authentication source. Watch emits every
// transition until ctx is done, then closes the channel.
type AuthSignal interface {
	Current() AuthState
	Watch(ctx context.Context) <-chan AuthState
}

// ManualAuth is an AuthSignal whose state is set by the caller
type ManualAuth struct {
	mu       sync.Mutex
	state    AuthState
	watchers map[chan AuthState]struct{}
}

// NewManualAuth creates a signal starting at initial
func NewManualAuth(initial AuthState) *ManualAuth {
	return &ManualAuth{
		state:    initial,
		watchers: make(map[chan AuthState]struct{}),
	}
}

// Current returns the latest state
func (m *ManualAuth) Current() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Watch returns a channel of state changes. Slow watchers only see the
// latest state.
func (m *ManualAuth) Watch(ctx context.Context) <-chan AuthState {
	ch := make(chan AuthState, 1)

	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, ch)
		close(ch)
		m.mu.Unlock()
	}()

	return ch
}

// Set changes the state and notifies watchers. Setting the same state again
// is a no-op.
func (m *ManualAuth) Set(state AuthState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state == m.state {
		return
	}
	m.state = state
	for ch := range m.watchers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

// SignIn sets an authenticated state for userID
func (m *ManualAuth) SignIn(userID string) {
	m.Set(SignedIn(userID))
}

// SignOut sets the unauthenticated state
func (m *ManualAuth) SignOut() {
	m.Set(SignedOut())
}
