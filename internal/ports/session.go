package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"time"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
)

// CredentialStore is the durable key-value store holding every piece of session state.
// A missing key is reported as ok == false and is never an error.
type CredentialStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Clear removes all given keys in a single pass so no reader observes a partial clear.
	Clear(ctx context.Context, keys ...string) error
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(ctx context.Context, view domainsession.View)
}

// SessionTerminator ends the current session. Implementations must be idempotent and must not panic.
type SessionTerminator interface {
	Terminate(ctx context.Context, reason domainsession.TerminationReason)
}

// ActivitySource delivers user interaction events.
// The returned cancel func removes the listener; it is safe to call more than once.
type ActivitySource interface {
	Subscribe() (events <-chan domainsession.Interaction, cancel func())
}

// TokenDecoder reads the declared expiry of a token without verifying its signature.
// ok is false when the token decodes but carries no expiry.
type TokenDecoder interface {
	Expiry(token string) (exp time.Time, ok bool, err error)
}

// Clock provides the current time and can be replaced in tests.
type Clock interface {
	Now() time.Time
}

// SessionMetrics records session lifecycle events.
type SessionMetrics interface {
	LoginAttempt(result string)
	Terminated(reason domainsession.TerminationReason)
	TokenDecodeFailure(token string)
	CompanyFallback()
}

// APIClient is the request pipeline as seen by the session services.
type APIClient interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
}

// BaseAddressSetter receives the backend base address derived from the active tenant.
type BaseAddressSetter interface {
	SetBaseURL(raw string) error
}
