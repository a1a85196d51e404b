package session

// Package session contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"sync/atomic"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Navigator         = (*RecordingNavigator)(nil)
	_ ports.SessionTerminator = (*RecordingTerminator)(nil)
	_ ports.CredentialStore   = (*FaultyStore)(nil)
	_ ports.ActivitySource    = (*ManualActivity)(nil)
)

// RecordingNavigator records every navigation.
type RecordingNavigator struct {
	mu    sync.Mutex
	views []domainsession.View
}

func (n *RecordingNavigator) Navigate(_ context.Context, view domainsession.View) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.views = append(n.views, view)
}

// Views returns a copy of the recorded navigations.
func (n *RecordingNavigator) Views() []domainsession.View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domainsession.View(nil), n.views...)
}

// Count returns how many times view was navigated to.
func (n *RecordingNavigator) Count(view domainsession.View) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, v := range n.views {
		if v == view {
			c++
		}
	}
	return c
}

// RecordingTerminator records termination reasons and optionally forwards to another terminator.
type RecordingTerminator struct {
	Next ports.SessionTerminator

	mu      sync.Mutex
	reasons []domainsession.TerminationReason
}

func (r *RecordingTerminator) Terminate(ctx context.Context, reason domainsession.TerminationReason) {
	r.mu.Lock()
	r.reasons = append(r.reasons, reason)
	r.mu.Unlock()
	if r.Next != nil {
		r.Next.Terminate(ctx, reason)
	}
}

// Reasons returns a copy of the recorded reasons.
func (r *RecordingTerminator) Reasons() []domainsession.TerminationReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domainsession.TerminationReason(nil), r.reasons...)
}

// FaultyStore wraps a store and injects errors. Zero-valued error funcs pass through.
type FaultyStore struct {
	Inner ports.CredentialStore

	GetErr   func(key string) error
	SetErr   func(key string) error
	ClearErr func(keys []string) error

	sets   atomic.Int64
	clears atomic.Int64

	mu       sync.Mutex
	setOrder []string
}

func (s *FaultyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.GetErr != nil {
		if err := s.GetErr(key); err != nil {
			return "", false, err
		}
	}
	return s.Inner.Get(ctx, key)
}

func (s *FaultyStore) Set(ctx context.Context, key, value string) error {
	s.sets.Add(1)
	if s.SetErr != nil {
		if err := s.SetErr(key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.setOrder = append(s.setOrder, key)
	s.mu.Unlock()
	return s.Inner.Set(ctx, key, value)
}

func (s *FaultyStore) Clear(ctx context.Context, keys ...string) error {
	s.clears.Add(1)
	if s.ClearErr != nil {
		if err := s.ClearErr(keys); err != nil {
			return err
		}
	}
	return s.Inner.Clear(ctx, keys...)
}

// SetOrder returns the keys written successfully, in order.
func (s *FaultyStore) SetOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.setOrder...)
}

// Sets returns the number of Set calls.
func (s *FaultyStore) Sets() int64 { return s.sets.Load() }

// Clears returns the number of Clear calls.
func (s *FaultyStore) Clears() int64 { return s.clears.Load() }

// ManualActivity is an ActivitySource driven directly by tests.
type ManualActivity struct {
	mu       sync.Mutex
	ch       chan domainsession.Interaction
	canceled bool
}

// NewManualActivity creates a source with the given buffer size.
func NewManualActivity(buffer int) *ManualActivity {
	return &ManualActivity{ch: make(chan domainsession.Interaction, buffer)}
}

func (a *ManualActivity) Subscribe() (<-chan domainsession.Interaction, func()) {
	var once sync.Once
	return a.ch, func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.canceled = true
			close(a.ch)
		})
	}
}

// Emit delivers an interaction. It is a no-op after the subscription was canceled.
func (a *ManualActivity) Emit(ev domainsession.Interaction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.canceled {
		return
	}
	a.ch <- ev
}

// Canceled reports whether the listener was removed.
func (a *ManualActivity) Canceled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.canceled
}
