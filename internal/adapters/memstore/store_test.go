package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSetClear(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, ok, err := s.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.False(t, ok, "absent key must not be reported as present")

	require.NoError(t, s.Set(ctx, "access_token", "A"))
	require.NoError(t, s.Set(ctx, "refresh_token", "R"))

	v, ok, err := s.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	require.NoError(t, s.Clear(ctx, "access_token", "refresh_token", "never_set"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_EmptyValueIsPresent(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Set(ctx, "tenantName", ""))

	v, ok, err := s.Get(ctx, "tenantName")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "token_expiration", "1")
		}()
		go func() {
			defer wg.Done()
			_, _, _ = s.Get(ctx, "token_expiration")
		}()
	}
	wg.Wait()

	v, ok, err := s.Get(ctx, "token_expiration")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}
