package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/memstore"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/apiclient"
	mocksession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/mocks/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testIdleWindow = 30 * time.Minute

// recordedCall is one request observed by fakeBackend.
type recordedCall struct {
	Host          string
	Path          string
	Authorization string
	Body          string
}

// fakeBackend serves the token, company and a protected endpoint for every tenant host.
type fakeBackend struct {
	mu sync.Mutex

	tokenStatus   int
	tokenBody     []byte
	companyStatus int
	companyBody   []byte
	// protected answers with this status for /api/protected/
	protectedStatus int

	calls []recordedCall
}

func newFakeBackend(login *testutil.LoginResponseBuilder) *fakeBackend {
	return &fakeBackend{
		tokenStatus:     http.StatusOK,
		tokenBody:       login.JSON(),
		companyStatus:   http.StatusOK,
		companyBody:     []byte(`{"header_text":"Acme Bestattungen","footer_text":"Seit 1901","logo":"acme.png"}`),
		protectedStatus: http.StatusOK,
	}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.calls = append(b.calls, recordedCall{
		Host:          r.Host,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Body:          string(body),
	})
	tokenStatus, tokenBody := b.tokenStatus, b.tokenBody
	companyStatus, companyBody := b.companyStatus, b.companyBody
	protectedStatus := b.protectedStatus
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/token/" && r.Method == http.MethodPost:
		w.WriteHeader(tokenStatus)
		_, _ = w.Write(tokenBody)
	case strings.HasPrefix(r.URL.Path, "/api/company/"):
		w.WriteHeader(companyStatus)
		_, _ = w.Write(companyBody)
	case r.URL.Path == "/api/protected/":
		w.WriteHeader(protectedStatus)
		_, _ = w.Write([]byte(`{"detail":"protected"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBackend) setToken(status int, body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenStatus, b.tokenBody = status, body
}

func (b *fakeBackend) setCompany(status int, body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.companyStatus, b.companyBody = status, body
}

func (b *fakeBackend) setProtected(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.protectedStatus = status
}

func (b *fakeBackend) callsTo(prefix string) []recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedCall
	for _, c := range b.calls {
		if strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

type harnessOptions struct {
	store   *mocksession.FaultyStore
	metrics ports.SessionMetrics
	login   *testutil.LoginResponseBuilder
}

type harness struct {
	store   *mocksession.FaultyStore
	backend *fakeBackend
	client  *apiclient.Client
	tenants *TenantResolver
	ctrl    *SessionController
	nav     *mocksession.RecordingNavigator
	clock   *testutil.TestTimeProvider
	login   *testutil.LoginResponseBuilder
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()
	ctx := context.Background()

	store := opts.store
	if store == nil {
		store = &mocksession.FaultyStore{Inner: memstore.New()}
	}
	login := opts.login
	if login == nil {
		login = testutil.NewLoginResponse()
	}

	backend := newFakeBackend(login)
	_, httpClient := testutil.NewTenantServer(t, backend)

	client, err := apiclient.New(apiclient.Options{
		BaseURL:    DeriveBaseURL(testutil.TenantTemplate, ""),
		HTTPClient: httpClient,
	})
	require.NoError(t, err)

	tenants, err := NewTenantResolver(ctx, TenantResolverOptions{
		Store:    store,
		Pipeline: client,
		Template: testutil.TenantTemplate,
	})
	require.NoError(t, err)

	company, err := NewCompanyFetcher(CompanyFetcherOptions{Client: client, Store: store, Metrics: opts.metrics})
	require.NoError(t, err)

	nav := &mocksession.RecordingNavigator{}
	clock := testutil.NewTestTimeProvider(testutil.TestTime())

	ctrl, err := NewSessionController(ctx, SessionControllerOptions{
		Store:       store,
		Client:      client,
		Tenants:     tenants,
		Company:     company,
		Navigator:   nav,
		IdleTimeout: testIdleWindow,
		Clock:       clock,
		Metrics:     opts.metrics,
	})
	require.NoError(t, err)

	client.UseRequest(apiclient.BearerInterceptor(store, nil))
	client.UseResponse(apiclient.UnauthorizedGuard(ctrl))

	return &harness{
		store:   store,
		backend: backend,
		client:  client,
		tenants: tenants,
		ctrl:    ctrl,
		nav:     nav,
		clock:   clock,
		login:   login,
	}
}

func (h *harness) get(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Inner.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func (h *harness) mustLogin(t *testing.T) *LoginResult {
	t.Helper()
	res, err := h.ctrl.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	return res
}

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}
