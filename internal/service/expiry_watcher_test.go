package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/jwtclaims"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/memstore"
	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/mocks"
	mocksession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/mocks/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestExpiryWatcher(t *testing.T, store *memstore.Store, opts ExpiryWatcherOptions) (*ExpiryWatcher, *mocksession.RecordingTerminator) {
	t.Helper()
	term := &mocksession.RecordingTerminator{}
	opts.Store = store
	opts.Terminator = term
	if opts.Decoder == nil {
		opts.Decoder = jwtclaims.Decoder{}
	}
	if opts.Interval == 0 {
		opts.Interval = time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = testutil.NewTestTimeProvider(testutil.TestTime())
	}
	w, err := NewExpiryWatcher(opts)
	require.NoError(t, err)
	return w, term
}

func TestExpiryWatcher_Check(t *testing.T) {
	now := testutil.TestTime()
	future := testutil.NewToken().ExpiresAt(now.Add(time.Hour)).String()
	past := testutil.NewToken().ExpiresAt(now.Add(-time.Second)).String()
	exactlyNow := testutil.NewToken().ExpiresAt(now).String()
	noExp := testutil.NewToken().String()

	tests := []struct {
		name      string
		access    string
		refresh   string
		wantEnded bool
	}{
		{name: "both valid", access: future, refresh: future},
		{name: "access expired", access: past, refresh: future, wantEnded: true},
		{name: "refresh expired", access: future, refresh: past, wantEnded: true},
		{name: "exp equal to now is still valid", access: exactlyNow, refresh: future},
		{name: "no exp claim never expires", access: noExp, refresh: noExp},
		{name: "no access token skips check", access: "", refresh: past},
		{name: "refresh missing", access: future},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memstore.New()
			if tt.access != "" {
				require.NoError(t, store.Set(ctx, domainsession.KeyAccessToken, tt.access))
			}
			if tt.refresh != "" {
				require.NoError(t, store.Set(ctx, domainsession.KeyRefreshToken, tt.refresh))
			}
			w, term := newTestExpiryWatcher(t, store, ExpiryWatcherOptions{})

			assert.Equal(t, tt.wantEnded, w.Check(ctx))
			if tt.wantEnded {
				assert.Equal(t, []domainsession.TerminationReason{domainsession.ReasonTokenExpired}, term.Reasons())
			} else {
				assert.Empty(t, term.Reasons())
			}
		})
	}
}

func TestExpiryWatcher_UndecodableTokenIsIgnored(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockSessionMetrics(ctrl)
	m.EXPECT().TokenDecodeFailure("access").Times(1)
	m.EXPECT().TokenDecodeFailure("refresh").Times(1)

	store := memstore.New()
	require.NoError(t, store.Set(ctx, domainsession.KeyAccessToken, "not-a-jwt"))
	require.NoError(t, store.Set(ctx, domainsession.KeyRefreshToken, "a.b.c"))

	w, term := newTestExpiryWatcher(t, store, ExpiryWatcherOptions{Metrics: m})
	assert.False(t, w.Check(ctx))
	assert.Empty(t, term.Reasons())
}

func TestExpiryWatcher_DecoderErrorDoesNotHideExpiredRefresh(t *testing.T) {
	ctx := context.Background()
	now := testutil.TestTime()
	ctrl := gomock.NewController(t)
	dec := mocks.NewMockTokenDecoder(ctrl)
	dec.EXPECT().Expiry("access").Return(time.Time{}, false, errors.New("garbled"))
	dec.EXPECT().Expiry("refresh").Return(now.Add(-time.Minute), true, nil)

	store := memstore.New()
	require.NoError(t, store.Set(ctx, domainsession.KeyAccessToken, "access"))
	require.NoError(t, store.Set(ctx, domainsession.KeyRefreshToken, "refresh"))

	w, term := newTestExpiryWatcher(t, store, ExpiryWatcherOptions{Decoder: dec})
	assert.True(t, w.Check(ctx))
	assert.Equal(t, []domainsession.TerminationReason{domainsession.ReasonTokenExpired}, term.Reasons())
}

func TestExpiryWatcher_ClockAdvance(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewTestTimeProvider(testutil.TestTime())
	store := memstore.New()
	require.NoError(t, store.Set(ctx, domainsession.KeyAccessToken,
		testutil.NewToken().ExpiresAt(clock.Now().Add(5*time.Minute)).String()))

	w, term := newTestExpiryWatcher(t, store, ExpiryWatcherOptions{Clock: clock})
	assert.False(t, w.Check(ctx))

	clock.AddTime(5*time.Minute + time.Second)
	assert.True(t, w.Check(ctx))
	assert.Len(t, term.Reasons(), 1)
}

func TestExpiryWatcher_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := memstore.New()
	require.NoError(t, store.Set(ctx, domainsession.KeyAccessToken,
		testutil.NewToken().ExpiresAt(testutil.TestTime().Add(-time.Hour)).String()))

	w, term := newTestExpiryWatcher(t, store, ExpiryWatcherOptions{Interval: 5 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(term.Reasons()) > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("expiry watcher did not stop")
	}
}

func TestNewExpiryWatcher_Validation(t *testing.T) {
	store := memstore.New()
	term := &mocksession.RecordingTerminator{}
	dec := jwtclaims.Decoder{}

	tests := []struct {
		name string
		opts ExpiryWatcherOptions
	}{
		{name: "store", opts: ExpiryWatcherOptions{Decoder: dec, Terminator: term, Interval: time.Second}},
		{name: "decoder", opts: ExpiryWatcherOptions{Store: store, Terminator: term, Interval: time.Second}},
		{name: "terminator", opts: ExpiryWatcherOptions{Store: store, Decoder: dec, Interval: time.Second}},
		{name: "interval", opts: ExpiryWatcherOptions{Store: store, Decoder: dec, Terminator: term}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExpiryWatcher(tt.opts)
			assert.Error(t, err)
		})
	}
}
