package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/observability/metrics"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
)

// ExpiryWatcherOptions groups dependencies for ExpiryWatcher.
type ExpiryWatcherOptions struct {
	Store      ports.CredentialStore   // Required: source of the token pair
	Decoder    ports.TokenDecoder      // Required: unsigned exp decoding
	Terminator ports.SessionTerminator // Required: called on a past exp
	Interval   time.Duration           // Required: check period
	Clock      ports.Clock             // Optional: defaults to wall clock
	Metrics    ports.SessionMetrics    // Optional: decode failure counter
	Logger     *slog.Logger            // Optional: structured logger
}

// ExpiryWatcher ends the session once either token's declared expiry has passed.
//
// A token that cannot be decoded is logged and skipped. Only a successfully decoded
// exp strictly before now terminates the session.
type ExpiryWatcher struct {
	store      ports.CredentialStore
	decoder    ports.TokenDecoder
	terminator ports.SessionTerminator
	interval   time.Duration
	clock      ports.Clock
	metrics    ports.SessionMetrics
	logger     *slog.Logger
}

// NewExpiryWatcher constructs an ExpiryWatcher.
func NewExpiryWatcher(opts ExpiryWatcherOptions) (*ExpiryWatcher, error) {
	switch {
	case opts.Store == nil:
		return nil, errors.New("CredentialStore is required")
	case opts.Decoder == nil:
		return nil, errors.New("TokenDecoder is required")
	case opts.Terminator == nil:
		return nil, errors.New("SessionTerminator is required")
	case opts.Interval <= 0:
		return nil, errors.New("expiry check interval must be positive")
	}

	w := &ExpiryWatcher{
		store:      opts.Store,
		decoder:    opts.Decoder,
		terminator: opts.Terminator,
		interval:   opts.Interval,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if w.clock == nil {
		w.clock = systemClock{}
	}
	if w.metrics == nil {
		w.metrics = metrics.Noop{}
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	w.logger = w.logger.With("component", "expiry_watcher")
	return w, nil
}

var watchedTokens = []struct {
	key   string
	label string
}{
	{key: domainsession.KeyAccessToken, label: "access"},
	{key: domainsession.KeyRefreshToken, label: "refresh"},
}

// Check inspects both tokens once and reports whether it terminated the session.
// It does nothing while no access token is stored.
func (w *ExpiryWatcher) Check(ctx context.Context) bool {
	if ok, err := hasAccessToken(ctx, w.store); err != nil || !ok {
		if err != nil {
			w.logger.WarnContext(ctx, "read access token failed; skipping expiry check", "error", err)
		}
		return false
	}

	now := w.clock.Now()
	for _, tok := range watchedTokens {
		raw, ok, err := w.store.Get(ctx, tok.key)
		if err != nil {
			w.logger.WarnContext(ctx, "read token failed", "token", tok.label, "error", err)
			continue
		}
		if !ok || raw == "" {
			continue
		}

		exp, hasExp, err := w.decoder.Expiry(raw)
		if err != nil {
			w.logger.WarnContext(ctx, "token could not be decoded; ignoring", "token", tok.label, "error", err)
			w.metrics.TokenDecodeFailure(tok.label)
			continue
		}
		if !hasExp || !exp.Before(now) {
			continue
		}

		w.logger.InfoContext(ctx, "token expired", "token", tok.label, "exp", exp, "now", now)
		w.terminator.Terminate(ctx, domainsession.ReasonTokenExpired)
		return true
	}
	return false
}

// Run checks on every tick until ctx is canceled. It returns nil on cancellation.
func (w *ExpiryWatcher) Run(ctx context.Context) error {
	w.logger.DebugContext(ctx, "starting expiry watcher", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	return runTicker(ctx, ticker, func() { w.Check(ctx) })
}

// runTicker invokes fn on every tick until ctx is done.
func runTicker(ctx context.Context, ticker *time.Ticker, fn func()) error {
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}
