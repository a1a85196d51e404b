package service

import (
	"context"
	"testing"
	"time"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/activity"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/jwtclaims"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/memstore"
	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	mocksession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/mocks/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type monitorFixture struct {
	store *memstore.Store
	clock *testutil.TestTimeProvider
	term  *mocksession.RecordingTerminator
	mon   *Monitor
}

func newMonitorFixture(t *testing.T, source ports.ActivitySource, expiryEvery, idleEvery time.Duration) *monitorFixture {
	t.Helper()
	f := &monitorFixture{
		store: memstore.New(),
		clock: testutil.NewTestTimeProvider(testutil.TestTime()),
		term:  &mocksession.RecordingTerminator{},
	}
	expiry, err := NewExpiryWatcher(ExpiryWatcherOptions{
		Store:      f.store,
		Decoder:    jwtclaims.Decoder{},
		Terminator: f.term,
		Interval:   expiryEvery,
		Clock:      f.clock,
	})
	require.NoError(t, err)
	idle, err := NewIdleWatcher(IdleWatcherOptions{
		Store:      f.store,
		Terminator: f.term,
		Window:     testIdleWindow,
		Interval:   idleEvery,
		Clock:      f.clock,
	})
	require.NoError(t, err)
	f.mon, err = NewMonitor(MonitorOptions{Expiry: expiry, Idle: idle, Activity: source})
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.mon.Stop() })
	return f
}

func (f *monitorFixture) authenticate(t *testing.T, access string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, domainsession.KeyAccessToken, access))
	require.NoError(t, f.store.Set(ctx, domainsession.KeyTokenExpiration,
		domainsession.FormatDeadline(f.clock.Now().Add(testIdleWindow))))
}

func TestMonitor_ExpiredTokenEndsSession(t *testing.T) {
	f := newMonitorFixture(t, mocksession.NewManualActivity(4), 5*time.Millisecond, time.Hour)
	f.authenticate(t, testutil.NewToken().ExpiresAt(f.clock.Now().Add(time.Minute)).String())

	require.NoError(t, f.mon.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, f.term.Reasons())

	f.clock.AddTime(2 * time.Minute)
	require.Eventually(t, func() bool { return len(f.term.Reasons()) > 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, domainsession.ReasonTokenExpired, f.term.Reasons()[0])
}

func TestMonitor_IdleSessionEnds(t *testing.T) {
	f := newMonitorFixture(t, mocksession.NewManualActivity(4), time.Hour, 5*time.Millisecond)
	f.authenticate(t, testutil.NewToken().ExpiresAt(f.clock.Now().Add(24*time.Hour)).String())

	require.NoError(t, f.mon.Start(context.Background()))
	f.clock.AddTime(testIdleWindow + time.Second)

	require.Eventually(t, func() bool { return len(f.term.Reasons()) > 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, domainsession.ReasonIdleTimeout, f.term.Reasons()[0])
}

func TestMonitor_ActivityFeedsIdleWatcher(t *testing.T) {
	source := mocksession.NewManualActivity(4)
	f := newMonitorFixture(t, source, time.Hour, time.Hour)
	f.authenticate(t, testutil.NewToken().ExpiresAt(f.clock.Now().Add(24*time.Hour)).String())
	require.NoError(t, f.mon.Start(context.Background()))

	at := f.clock.Now().Add(10 * time.Minute)
	source.Emit(domainsession.Interaction{Kind: domainsession.InteractionKeyPress, At: at})

	want := domainsession.FormatDeadline(at.Add(testIdleWindow))
	assert.Eventually(t, func() bool {
		v, _, _ := f.store.Get(context.Background(), domainsession.KeyTokenExpiration)
		return v == want
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.term.Reasons())
}

func TestMonitor_StartStop(t *testing.T) {
	source := mocksession.NewManualActivity(1)
	f := newMonitorFixture(t, source, time.Hour, time.Hour)
	ctx := context.Background()

	assert.False(t, f.mon.Running())
	require.NoError(t, f.mon.Start(ctx))
	assert.True(t, f.mon.Running())
	assert.ErrorIs(t, f.mon.Start(ctx), ErrMonitorRunning)

	require.NoError(t, f.mon.Stop())
	assert.False(t, f.mon.Running())
	assert.True(t, source.Canceled())

	require.NoError(t, f.mon.Stop())
}

func TestMonitor_RestartResubscribes(t *testing.T) {
	bus := activity.NewBus(activity.BusOptions{Buffer: 4})
	f := newMonitorFixture(t, bus, time.Hour, time.Hour)
	ctx := context.Background()

	for range 2 {
		require.NoError(t, f.mon.Start(ctx))
		assert.Equal(t, 1, bus.Subscribers())
		require.NoError(t, f.mon.Stop())
		assert.Equal(t, 0, bus.Subscribers())
	}
}

func TestMonitor_ParentCancelStopsWatchers(t *testing.T) {
	bus := activity.NewBus(activity.BusOptions{Buffer: 4})
	f := newMonitorFixture(t, bus, 5*time.Millisecond, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, f.mon.Start(ctx))
	cancel()

	done := make(chan error, 1)
	go func() { done <- f.mon.Stop() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after parent cancellation")
	}
}

func TestNewMonitor_Validation(t *testing.T) {
	_, err := NewMonitor(MonitorOptions{})
	assert.Error(t, err)
}
