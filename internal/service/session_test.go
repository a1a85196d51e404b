package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/memstore"
	redisstore "github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/redis"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/apiclient"
	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	apperrors "github.com/Currypiekers/bestattungssoftware-portfolio/internal/errors"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/mocks"
	mocksession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/mocks/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/observability/metrics"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestLogin_AliceAtAcme(t *testing.T) {
	ctx := context.Background()
	login := testutil.NewLoginResponse().WithAccess("A").WithRefresh("R")
	h := newHarness(t, harnessOptions{login: login})
	require.NoError(t, h.ctrl.SwitchTenant(ctx, "acme"))

	res, err := h.ctrl.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "acme", res.Tenant)
	assert.Equal(t, "http://acme.portal.test/", h.tenants.CurrentBaseAddress())
	assert.Equal(t, "http://acme.portal.test/", h.client.BaseURL())

	access, _ := h.get(t, domainsession.KeyAccessToken)
	assert.Equal(t, "A", access)
	refresh, _ := h.get(t, domainsession.KeyRefreshToken)
	assert.Equal(t, "R", refresh)

	exchange := h.backend.callsTo("/api/token/")
	require.Len(t, exchange, 1)
	assert.Equal(t, "acme.portal.test", exchange[0].Host)
	assert.JSONEq(t, `{"username":"alice","password":"secret"}`, exchange[0].Body)
	assert.Empty(t, exchange[0].Authorization)

	company := h.backend.callsTo("/api/company/")
	require.Len(t, company, 1)
	assert.Equal(t, "/api/company/7/", company[0].Path)
	assert.Equal(t, "acme.portal.test", company[0].Host)
	assert.Equal(t, "Bearer A", company[0].Authorization)
	assert.Equal(t, "Acme Bestattungen", res.Company.HeaderText)

	assert.Equal(t, []domainsession.View{domainsession.ViewDashboard}, h.nav.Views())
	assert.Equal(t, domainsession.StateAuthenticated, h.ctrl.State())
	assert.True(t, h.ctrl.IsAuthenticated(ctx))

	profile, ok := h.ctrl.Profile(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "AL", profile.MitarbeiterKuerzel)
	assert.Equal(t, "acme", profile.TenantName)

	deadline, ok := h.get(t, domainsession.KeyTokenExpiration)
	require.True(t, ok)
	assert.Equal(t, domainsession.FormatDeadline(testutil.TestTime().Add(testIdleWindow)), deadline)
}

func TestLogin_WritesAccessTokenAfterTenantAndDeadline(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.mustLogin(t)

	assert.Equal(t, []string{
		domainsession.KeyRefreshToken,
		domainsession.KeyUserData,
		domainsession.KeyTenantName,
		domainsession.KeyTokenExpiration,
		domainsession.KeyAccessToken,
		domainsession.KeyCompanyData,
	}, h.store.SetOrder())
}

func TestLogin_ActivatesTenantFromResponse(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, harnessOptions{login: testutil.NewLoginResponse().WithTenant("zeus")})
	require.NoError(t, h.ctrl.SwitchTenant(ctx, "acme"))

	res := h.mustLogin(t)
	assert.Equal(t, "zeus", res.Tenant)
	assert.Equal(t, "zeus", h.tenants.Current())

	tenant, _ := h.get(t, domainsession.KeyTenantName)
	assert.Equal(t, "zeus", tenant)

	company := h.backend.callsTo("/api/company/")
	require.Len(t, company, 1)
	assert.Equal(t, "zeus.portal.test", company[0].Host)
}

func TestLogin_KeepsCurrentTenantWhenResponseHasNone(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, harnessOptions{login: testutil.NewLoginResponse().WithTenant("")})
	require.NoError(t, h.ctrl.SwitchTenant(ctx, "acme"))

	res := h.mustLogin(t)
	assert.Equal(t, "acme", res.Tenant)
	assert.Equal(t, "http://acme.portal.test/", h.client.BaseURL())
}

func TestLogin_CompanyFetchFailureUsesDefault(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   []byte
		login  *testutil.LoginResponseBuilder
	}{
		{name: "server error", status: http.StatusInternalServerError, body: []byte(`{}`), login: testutil.NewLoginResponse()},
		{name: "unauthorized", status: http.StatusUnauthorized, body: []byte(`{"detail":"nope"}`), login: testutil.NewLoginResponse()},
		{name: "not an object", status: http.StatusOK, body: []byte(`["x"]`), login: testutil.NewLoginResponse()},
		{name: "no company id", status: http.StatusOK, body: []byte(`{}`), login: testutil.NewLoginResponse().WithoutCompany()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := mocks.NewMockSessionMetrics(ctrl)
			m.EXPECT().CompanyFallback().Times(1)
			m.EXPECT().LoginAttempt(metrics.LoginSucceeded).Times(1)

			h := newHarness(t, harnessOptions{metrics: m, login: tt.login})
			h.backend.setCompany(tt.status, tt.body)

			res := h.mustLogin(t)

			assert.Equal(t, domainsession.DefaultCompanyProfile().HeaderText, res.Company.HeaderText)
			stored, ok := h.get(t, domainsession.KeyCompanyData)
			require.True(t, ok)
			assert.JSONEq(t, `{"header_text":"[Header Text]","footer_text":"[Footer Text]"}`, stored)
			assert.Equal(t, domainsession.StateAuthenticated, h.ctrl.State())
			assert.Equal(t, []domainsession.View{domainsession.ViewDashboard}, h.nav.Views())
		})
	}
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    []byte
		wantMsg string
	}{
		{name: "detail", status: http.StatusUnauthorized, body: []byte(`{"detail":"No active account found with the given credentials"}`), wantMsg: "No active account found with the given credentials"},
		{name: "no detail", status: http.StatusBadRequest, body: []byte(`{"username":["required"]}`), wantMsg: "Failed to login"},
		{name: "not json", status: http.StatusBadGateway, body: []byte(`<html>bad gateway</html>`), wantMsg: "Failed to login"},
		{name: "missing access token", status: http.StatusOK, body: []byte(`{"refresh":"R"}`), wantMsg: "Failed to login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, harnessOptions{})
			require.NoError(t, h.ctrl.SwitchTenant(ctx, "acme"))
			setsBefore := h.store.Sets()
			h.backend.setToken(tt.status, tt.body)

			res, err := h.ctrl.Login(ctx, "alice", "wrong")
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, apperrors.IsCredentialRejected(err))

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantMsg, appErr.UserMessage())

			assert.Equal(t, domainsession.StateAnonymous, h.ctrl.State())
			assert.Equal(t, setsBefore, h.store.Sets(), "a rejected login must not write")
			assert.Zero(t, h.store.Clears(), "a rejected login must not clear")
			assert.Equal(t, "acme", h.tenants.Current())
			assert.Empty(t, h.nav.Views())
		})
	}
}

func TestLogin_TransportFailure(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.ctrl.Login(ctx, "alice", "secret")
	require.Error(t, err)
	assert.True(t, apperrors.IsCredentialRejected(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domainsession.StateAnonymous, h.ctrl.State())
}

func TestLogin_Validation(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	_, err := h.ctrl.Login(context.Background(), "  ", "secret")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "username", apperrors.GetField(err))

	_, err = h.ctrl.Login(context.Background(), "alice", "")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "password", apperrors.GetField(err))

	assert.Empty(t, h.backend.callsTo("/"))
}

func TestLogin_PersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	store := &mocksession.FaultyStore{
		Inner: memstore.New(),
		SetErr: func(key string) error {
			if key == domainsession.KeyTokenExpiration {
				return boom
			}
			return nil
		},
	}
	h := newHarness(t, harnessOptions{store: store})

	_, err := h.ctrl.Login(ctx, "alice", "secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, apperrors.ErrCodeUnavailable, apperrors.GetCode(err))

	for _, key := range domainsession.AllKeys() {
		_, ok := h.get(t, key)
		assert.False(t, ok, key)
	}
	assert.False(t, h.ctrl.IsAuthenticated(ctx))
	assert.Equal(t, domainsession.StateAnonymous, h.ctrl.State())
	assert.Empty(t, h.tenants.Current())
	assert.Empty(t, h.nav.Views())
}

func TestLogout_ClearsEverythingAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, harnessOptions{})
	h.mustLogin(t)

	h.ctrl.Logout(ctx)
	h.ctrl.Logout(ctx)

	for _, key := range domainsession.AllKeys() {
		_, ok := h.get(t, key)
		assert.False(t, ok, key)
	}
	assert.False(t, h.ctrl.IsAuthenticated(ctx))
	assert.Equal(t, domainsession.StateAnonymous, h.ctrl.State())
	assert.Empty(t, h.tenants.Current())
	assert.Equal(t, "http://.portal.test/", h.client.BaseURL())
	assert.Equal(t, 1, h.nav.Count(domainsession.ViewLogin))
}

func TestLogout_ConcurrentCallsEndSessionOnce(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockSessionMetrics(ctrl)
	m.EXPECT().LoginAttempt(gomock.Any()).AnyTimes()
	m.EXPECT().CompanyFallback().AnyTimes()
	m.EXPECT().Terminated(domainsession.ReasonUser).Times(1)

	h := newHarness(t, harnessOptions{metrics: m})
	h.mustLogin(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.ctrl.Logout(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.nav.Count(domainsession.ViewLogin))
	assert.False(t, h.ctrl.IsAuthenticated(ctx))
}

func TestLogout_SurvivesFailingStoreAndPanickingNavigator(t *testing.T) {
	ctx := context.Background()
	store := &mocksession.FaultyStore{Inner: memstore.New()}
	h := newHarness(t, harnessOptions{store: store})
	h.mustLogin(t)

	store.ClearErr = func([]string) error { return errors.New("backend down") }
	h.ctrl.navigator = panicNavigator{}

	assert.NotPanics(t, func() { h.ctrl.Logout(ctx) })
	assert.Equal(t, domainsession.StateAnonymous, h.ctrl.State())
	assert.Empty(t, h.tenants.Current())
}

type panicNavigator struct{}

func (panicNavigator) Navigate(context.Context, domainsession.View) { panic("router gone") }

func TestUnauthorized_ThreeConcurrentRequestsLogOutOnce(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockSessionMetrics(ctrl)
	m.EXPECT().LoginAttempt(gomock.Any()).AnyTimes()
	m.EXPECT().CompanyFallback().AnyTimes()
	m.EXPECT().Terminated(domainsession.ReasonUnauthorized).Times(1)

	h := newHarness(t, harnessOptions{metrics: m})
	h.mustLogin(t)
	h.backend.setProtected(http.StatusUnauthorized)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.client.Get(ctx, "api/protected/", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))
	}
	assert.Equal(t, 1, h.nav.Count(domainsession.ViewLogin))
	assert.Equal(t, domainsession.StateAnonymous, h.ctrl.State())
	assert.False(t, h.ctrl.IsAuthenticated(ctx))
}

func TestIsAuthenticated_NoStaleTrueAfterLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, harnessOptions{})
	assert.False(t, h.ctrl.IsAuthenticated(ctx))

	h.mustLogin(t)
	assert.True(t, h.ctrl.IsAuthenticated(ctx))

	h.ctrl.Logout(ctx)
	assert.False(t, h.ctrl.IsAuthenticated(ctx))

	h.backend.setProtected(http.StatusOK)
	require.NoError(t, h.client.Get(ctx, "api/protected/", nil))
	calls := h.backend.callsTo("/api/protected/")
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Authorization)
}

func TestNewSessionController_ResumesPersistedSession(t *testing.T) {
	ctx := context.Background()
	inner := memstore.New()
	require.NoError(t, inner.Set(ctx, domainsession.KeyAccessToken, "A"))
	require.NoError(t, inner.Set(ctx, domainsession.KeyTenantName, "acme"))

	h := newHarness(t, harnessOptions{store: &mocksession.FaultyStore{Inner: inner}})

	assert.Equal(t, domainsession.StateAuthenticated, h.ctrl.State())
	assert.Equal(t, "acme", h.tenants.Current())
	assert.Equal(t, "http://acme.portal.test/", h.client.BaseURL())
}

func TestSwitchTenant_RejectedWhileAuthenticated(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.mustLogin(t)

	err := h.ctrl.SwitchTenant(context.Background(), "other")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "acme", h.ctrl.Tenant())
}

func TestNewSessionController_Validation(t *testing.T) {
	_, err := NewSessionController(context.Background(), SessionControllerOptions{})
	assert.Error(t, err)

	h := newHarness(t, harnessOptions{})
	_, err = NewSessionController(context.Background(), SessionControllerOptions{
		Store:           h.store,
		Client:          h.client,
		Tenants:         h.tenants,
		Company:         h.ctrl.company,
		Navigator:       h.nav,
		IdleTimeout:     time.Minute,
		ErrorDetailExpr: "detail[",
	})
	assert.Error(t, err)
}

func TestTerminate_DuringLoginWaitsForCommittedSession(t *testing.T) {
	ctx := context.Background()
	store := &mocksession.FaultyStore{Inner: memstore.New()}
	h := newHarness(t, harnessOptions{store: store})

	ended := make(chan struct{})
	var once sync.Once
	store.SetErr = func(key string) error {
		if key == domainsession.KeyUserData {
			// A 401 on another request arrives while Login is writing.
			once.Do(func() {
				go func() {
					defer close(ended)
					h.ctrl.Terminate(ctx, domainsession.ReasonUnauthorized)
				}()
			})
		}
		return nil
	}

	_, err := h.ctrl.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("terminate did not finish")
	}

	for _, key := range domainsession.AllKeys() {
		_, ok := h.get(t, key)
		assert.False(t, ok, key)
	}
	assert.Equal(t, domainsession.StateAnonymous, h.ctrl.State())
	assert.False(t, h.ctrl.IsAuthenticated(ctx))
	assert.Empty(t, h.tenants.Current())
	assert.Equal(t, []domainsession.View{domainsession.ViewDashboard, domainsession.ViewLogin}, h.nav.Views())
}

func TestTerminate_CanceledContextStillClearsStore(t *testing.T) {
	client, _ := testutil.SetupMiniRedis(t)
	rs, err := redisstore.NewCredentialStore(redisstore.CredentialStoreOptions{Client: client})
	require.NoError(t, err)

	h := newHarness(t, harnessOptions{store: &mocksession.FaultyStore{Inner: rs}})
	h.mustLogin(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.ctrl.Terminate(ctx, domainsession.ReasonIdleTimeout)

	assert.Equal(t, domainsession.StateAnonymous, h.ctrl.State())
	assert.False(t, h.ctrl.IsAuthenticated(context.Background()))
	for _, key := range domainsession.AllKeys() {
		_, ok := h.get(t, key)
		assert.False(t, ok, key)
	}
	assert.Equal(t, 1, h.nav.Count(domainsession.ViewLogin))
}
