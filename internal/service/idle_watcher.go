package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
)

// IdleWatcherOptions groups dependencies for IdleWatcher.
type IdleWatcherOptions struct {
	Store      ports.CredentialStore   // Required: holds token_expiration
	Terminator ports.SessionTerminator // Required: called when idle
	Window     time.Duration           // Required: validity after the last interaction
	Interval   time.Duration           // Required: check period
	Clock      ports.Clock             // Optional: defaults to wall clock
	Logger     *slog.Logger            // Optional: structured logger
}

// IdleWatcher keeps the idle deadline under token_expiration and ends idle sessions.
type IdleWatcher struct {
	store      ports.CredentialStore
	terminator ports.SessionTerminator
	window     time.Duration
	interval   time.Duration
	clock      ports.Clock
	logger     *slog.Logger

	// serializes read-then-write of the deadline
	mu sync.Mutex
}

// NewIdleWatcher constructs an IdleWatcher.
func NewIdleWatcher(opts IdleWatcherOptions) (*IdleWatcher, error) {
	switch {
	case opts.Store == nil:
		return nil, errors.New("CredentialStore is required")
	case opts.Terminator == nil:
		return nil, errors.New("SessionTerminator is required")
	case opts.Window <= 0:
		return nil, errors.New("idle window must be positive")
	case opts.Interval <= 0:
		return nil, errors.New("idle check interval must be positive")
	}

	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IdleWatcher{
		store:      opts.Store,
		terminator: opts.Terminator,
		window:     opts.Window,
		interval:   opts.Interval,
		clock:      clock,
		logger:     logger.With("component", "idle_watcher"),
	}, nil
}

// Window returns the idle window.
func (w *IdleWatcher) Window() time.Duration { return w.window }

// RecordActivity extends the deadline to ev.At + window while a session is active.
// An interaction that arrives after the deadline already passed ends the session instead.
func (w *IdleWatcher) RecordActivity(ctx context.Context, ev domainsession.Interaction) {
	w.mu.Lock()
	defer w.mu.Unlock()

	active, err := hasAccessToken(ctx, w.store)
	if err != nil {
		w.logger.WarnContext(ctx, "read access token failed; ignoring interaction", "error", err)
		return
	}
	if !active {
		return
	}

	at := ev.At
	if at.IsZero() {
		at = w.clock.Now()
	}

	deadline, ok, err := w.deadline(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "read idle deadline failed; ignoring interaction", "error", err)
		return
	}
	if !ok || at.After(deadline) {
		w.logger.InfoContext(ctx, "interaction after idle deadline", "kind", ev.Kind, "deadline", deadline)
		w.terminator.Terminate(ctx, domainsession.ReasonIdleTimeout)
		return
	}

	if err := w.store.Set(ctx, domainsession.KeyTokenExpiration, domainsession.FormatDeadline(at.Add(w.window))); err != nil {
		w.logger.ErrorContext(ctx, "extend idle deadline failed", "error", err)
	}
}

// Check ends the session when now is past the deadline or no valid deadline is stored.
// It reports whether it terminated the session.
func (w *IdleWatcher) Check(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	active, err := hasAccessToken(ctx, w.store)
	if err != nil {
		w.logger.WarnContext(ctx, "read access token failed; skipping idle check", "error", err)
		return false
	}
	if !active {
		return false
	}

	deadline, ok, err := w.deadline(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "read idle deadline failed; skipping idle check", "error", err)
		return false
	}
	now := w.clock.Now()
	if ok && !now.After(deadline) {
		return false
	}

	w.logger.InfoContext(ctx, "session idle", "deadline", deadline, "now", now, "deadline_present", ok)
	w.terminator.Terminate(ctx, domainsession.ReasonIdleTimeout)
	return true
}

// Run checks on every tick until ctx is canceled. It returns nil on cancellation.
func (w *IdleWatcher) Run(ctx context.Context) error {
	w.logger.DebugContext(ctx, "starting idle watcher", "interval", w.interval, "window", w.window)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	return runTicker(ctx, ticker, func() { w.Check(ctx) })
}

// deadline returns the stored deadline. ok is false when absent or unparseable.
func (w *IdleWatcher) deadline(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := w.store.Get(ctx, domainsession.KeyTokenExpiration)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, parseErr := domainsession.ParseDeadline(raw)
	if parseErr != nil {
		w.logger.WarnContext(ctx, "stored idle deadline is malformed", "value", raw, "error", parseErr)
		return time.Time{}, false, nil
	}
	return t, true, nil
}
