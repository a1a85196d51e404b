// Package sealed encrypts selected credential store values at rest.
package sealed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
)

var _ ports.CredentialStore = (*Store)(nil)

// Sealer encrypts and decrypts single values.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// DefaultKeys are sealed unless Options.Keys says otherwise: the bearer pair.
func DefaultKeys() []string {
	return []string{domainsession.KeyAccessToken, domainsession.KeyRefreshToken}
}

// Options configures a Store.
type Options struct {
	Inner  ports.CredentialStore // Required
	Sealer Sealer                // Required
	Keys   []string              // Optional: defaults to DefaultKeys
	Logger *slog.Logger          // Optional
}

// Store wraps another credential store and seals the configured keys.
// Plaintext values written before sealing was enabled are still readable.
type Store struct {
	inner  ports.CredentialStore
	sealer Sealer
	keys   map[string]struct{}
	logger *slog.Logger
}

// New creates a sealing Store.
func New(opts Options) (*Store, error) {
	if opts.Inner == nil {
		return nil, errors.New("inner credential store is required")
	}
	if opts.Sealer == nil {
		return nil, errors.New("sealer is required")
	}
	keys := opts.Keys
	if len(keys) == 0 {
		keys = DefaultKeys()
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{inner: opts.Inner, sealer: opts.Sealer, keys: set, logger: logger.With("component", "sealed_store")}, nil
}

func (s *Store) sealed(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok || !s.sealed(key) {
		return v, ok, err
	}
	pt, openErr := s.sealer.Open(v)
	if errors.Is(openErr, ErrNotSealed) {
		s.logger.DebugContext(ctx, "reading unsealed legacy value", "key", key)
		return v, true, nil
	}
	if openErr != nil {
		return "", false, fmt.Errorf("unseal %s: %w", key, openErr)
	}
	return pt, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if !s.sealed(key) {
		return s.inner.Set(ctx, key, value)
	}
	ct, err := s.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, ct)
}

func (s *Store) Clear(ctx context.Context, keys ...string) error {
	return s.inner.Clear(ctx, keys...)
}
