package redis

// Package redis provides a Redis-backed credential store so several clients can share one session.

import (
	"context"
	"errors"
	"fmt"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"github.com/redis/go-redis/v9"
)

var _ ports.CredentialStore = (*CredentialStore)(nil)

// DefaultKeyPrefix is prepended to every key unless overridden.
const DefaultKeyPrefix = "portal:session:"

// CredentialStore keeps each session key as a plain Redis string under prefix+namespace.
// Keys carry no TTL; the session controller owns expiry.
type CredentialStore struct {
	client redis.UniversalClient
	prefix string
}

// CredentialStoreOptions configures a CredentialStore.
type CredentialStoreOptions struct {
	Client    redis.UniversalClient
	KeyPrefix string
	Namespace string
}

// NewCredentialStore creates a Redis credential store.
func NewCredentialStore(opts CredentialStoreOptions) (*CredentialStore, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if opts.Namespace != "" {
		prefix += opts.Namespace + ":"
	}
	return &CredentialStore{client: opts.Client, prefix: prefix}, nil
}

func (s *CredentialStore) key(k string) string { return s.prefix + k }

func (s *CredentialStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *CredentialStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Clear deletes all keys inside MULTI/EXEC so concurrent readers never see a partial clear.
func (s *CredentialStore) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, full...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}
