package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"golang.org/x/sync/errgroup"
)

// ErrMonitorRunning is returned by Start while the monitor is already running.
var ErrMonitorRunning = errors.New("expiration monitor already started")

// MonitorOptions groups dependencies for Monitor.
type MonitorOptions struct {
	Expiry   *ExpiryWatcher       // Required
	Idle     *IdleWatcher         // Required
	Activity ports.ActivitySource // Required: interaction events feeding the idle watcher
	Logger   *slog.Logger         // Optional: structured logger
}

// Monitor owns the background work of an active session context: both watchers and the interaction listener.
type Monitor struct {
	expiry   *ExpiryWatcher
	idle     *IdleWatcher
	activity ports.ActivitySource
	logger   *slog.Logger

	mu          sync.Mutex
	cancel      context.CancelFunc
	unsubscribe func()
	group       *errgroup.Group
}

// NewMonitor constructs a Monitor.
func NewMonitor(opts MonitorOptions) (*Monitor, error) {
	switch {
	case opts.Expiry == nil:
		return nil, errors.New("ExpiryWatcher is required")
	case opts.Idle == nil:
		return nil, errors.New("IdleWatcher is required")
	case opts.Activity == nil:
		return nil, errors.New("ActivitySource is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		expiry:   opts.Expiry,
		idle:     opts.Idle,
		activity: opts.Activity,
		logger:   logger.With("component", "expiration_monitor"),
	}, nil
}

// Start launches the watchers and the interaction listener. They run until Stop or until ctx is canceled.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.group != nil {
		return ErrMonitorRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	events, unsubscribe := m.activity.Subscribe()

	g.Go(func() error { return m.expiry.Run(gctx) })
	g.Go(func() error { return m.idle.Run(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				m.idle.RecordActivity(gctx, ev)
			}
		}
	})

	m.cancel = cancel
	m.unsubscribe = unsubscribe
	m.group = g
	m.logger.InfoContext(ctx, "expiration monitor started")
	return nil
}

// Stop cancels the watchers, removes the interaction listener and waits for all goroutines.
// Calling Stop on a stopped monitor is a no-op.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.group == nil {
		return nil
	}

	m.cancel()
	m.unsubscribe()
	err := m.group.Wait()

	m.cancel = nil
	m.unsubscribe = nil
	m.group = nil
	m.logger.Info("expiration monitor stopped")
	return err
}

// Running reports whether Start has been called without a matching Stop.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.group != nil
}
