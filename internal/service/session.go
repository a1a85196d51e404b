package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/apiclient"
	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	apperrors "github.com/Currypiekers/bestattungssoftware-portfolio/internal/errors"
	obserrors "github.com/Currypiekers/bestattungssoftware-portfolio/internal/observability/errors"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/observability/metrics"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"golang.org/x/sync/singleflight"
)

const (
	// TokenPath is the credential exchange endpoint relative to the tenant base address.
	TokenPath = "api/token/"

	// DefaultErrorDetailExpr selects the rejection message from a failed exchange body.
	DefaultErrorDetailExpr = "detail"

	loginFailedMessage = "Failed to login"
)

var _ ports.SessionTerminator = (*SessionController)(nil)

// SessionControllerOptions groups dependencies for SessionController.
type SessionControllerOptions struct {
	Store           ports.CredentialStore // Required: session persistence
	Client          ports.APIClient       // Required: request pipeline
	Tenants         *TenantResolver       // Required: tenant activation
	Company         *CompanyFetcher       // Required: post-login side-fetch
	Navigator       ports.Navigator       // Required: view transitions
	IdleTimeout     time.Duration         // Required: initial idle window
	ErrorDetailExpr string                // Optional: JMESPath into the rejection body, defaults to "detail"
	Evaluator       JMESPathEvaluator     // Optional: defaults to go-jmespath
	Clock           ports.Clock           // Optional: defaults to wall clock
	Metrics         ports.SessionMetrics  // Optional: lifecycle counters
	Logger          *slog.Logger          // Optional: structured logger
}

// LoginResult describes a session established by Login.
type LoginResult struct {
	Profile domainsession.UserProfile
	Company domainsession.CompanyProfile
	Tenant  string
}

// SessionController drives the session state machine.
//
// Login moves Anonymous to Authenticated. Terminate (and Logout, which is Terminate with
// reason "user") moves any state to Anonymous; it is idempotent, coalesces concurrent
// callers and never fails, so watchers and interceptors can call it freely.
type SessionController struct {
	store      ports.CredentialStore
	client     ports.APIClient
	tenants    *TenantResolver
	company    *CompanyFetcher
	navigator  ports.Navigator
	idle       time.Duration
	detailExpr string
	evaluator  JMESPathEvaluator
	clock      ports.Clock
	metrics    ports.SessionMetrics
	logger     *slog.Logger

	loginMu sync.Mutex
	// commitMu orders the persisted session writes of Login against teardown,
	// so Terminate never interleaves with a half-written session.
	commitMu sync.Mutex
	group    singleflight.Group

	mu    sync.RWMutex
	state domainsession.State
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	domainsession.UserProfile
}

// NewSessionController constructs a SessionController. The initial state is Authenticated
// when an access token survived from a previous run.
func NewSessionController(ctx context.Context, opts SessionControllerOptions) (*SessionController, error) {
	if err := validateSessionOptions(opts); err != nil {
		return nil, err
	}

	c := &SessionController{
		store:      opts.Store,
		client:     opts.Client,
		tenants:    opts.Tenants,
		company:    opts.Company,
		navigator:  opts.Navigator,
		idle:       opts.IdleTimeout,
		detailExpr: opts.ErrorDetailExpr,
		evaluator:  opts.Evaluator,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		state:      domainsession.StateAnonymous,
	}
	c.applyDefaults()

	if err := c.evaluator.Validate(c.detailExpr); err != nil {
		return nil, fmt.Errorf("invalid error detail expression %q: %w", c.detailExpr, err)
	}
	if c.IsAuthenticated(ctx) {
		c.state = domainsession.StateAuthenticated
		c.logger.InfoContext(ctx, "resuming persisted session", "tenant", c.tenants.Current())
	}
	return c, nil
}

func validateSessionOptions(opts SessionControllerOptions) error {
	switch {
	case opts.Store == nil:
		return errors.New("CredentialStore is required")
	case opts.Client == nil:
		return errors.New("APIClient is required")
	case opts.Tenants == nil:
		return errors.New("TenantResolver is required")
	case opts.Company == nil:
		return errors.New("CompanyFetcher is required")
	case opts.Navigator == nil:
		return errors.New("Navigator is required")
	case opts.IdleTimeout <= 0:
		return errors.New("idle timeout must be positive")
	}
	return nil
}

func (c *SessionController) applyDefaults() {
	if c.detailExpr == "" {
		c.detailExpr = DefaultErrorDetailExpr
	}
	if c.evaluator == nil {
		c.evaluator = jmespathLibEvaluator{}
	}
	if c.clock == nil {
		c.clock = systemClock{}
	}
	if c.metrics == nil {
		c.metrics = metrics.Noop{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "session_controller")
}

// State returns the current state.
func (c *SessionController) State() domainsession.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *SessionController) setState(s domainsession.State) domainsession.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.state
	c.state = s
	return prev
}

// IsAuthenticated reports whether an access token is stored. It says nothing about validity.
func (c *SessionController) IsAuthenticated(ctx context.Context) bool {
	ok, err := hasAccessToken(ctx, c.store)
	if err != nil {
		c.logger.WarnContext(ctx, "read access token failed", "error", err)
		return false
	}
	return ok
}

// Login exchanges username and password for a credential pair and establishes the session.
// Rejections return an *errors.AppError with code credential_rejected whose message is safe to show.
func (c *SessionController) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" {
		c.metrics.LoginAttempt(metrics.LoginInvalid)
		return nil, apperrors.ValidationField("username", "username is required")
	}
	if password == "" {
		c.metrics.LoginAttempt(metrics.LoginInvalid)
		return nil, apperrors.ValidationField("password", "password is required")
	}

	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	log := c.logger.With("username", username, "tenant", c.tenants.Current())

	var resp loginResponse
	// The exchange is anonymous: a 401 here is a rejected password, not a dead session.
	err := c.client.Post(apiclient.WithAnonymous(ctx), TokenPath, loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, c.rejectLogin(ctx, log, err)
	}
	if resp.Access == "" {
		return nil, c.rejectLogin(ctx, log, errors.New("token response carries no access token"))
	}

	tenant := resp.TenantName
	if tenant == "" {
		tenant = c.tenants.Current()
	}
	company, err := c.commitLogin(ctx, resp, tenant)
	if err != nil {
		c.metrics.LoginAttempt(metrics.LoginFailed)
		log.ErrorContext(ctx, "persist session failed; rolled back", "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, loginFailedMessage)
	}

	c.metrics.LoginAttempt(metrics.LoginSucceeded)
	log.InfoContext(ctx, "login succeeded", "user_id", resp.UserID, "active_tenant", tenant)

	return &LoginResult{Profile: resp.UserProfile, Company: company, Tenant: tenant}, nil
}

// commitLogin persists the session, fetches the company profile, marks the session
// Authenticated and shows the dashboard, all under commitMu so a teardown lands either
// before or after it. A persist failure is rolled back before returning.
func (c *SessionController) commitLogin(
	ctx context.Context,
	resp loginResponse,
	tenant string,
) (domainsession.CompanyProfile, error) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	if err := c.persistLogin(ctx, resp, tenant); err != nil {
		c.rollbackLogin(ctx)
		return domainsession.CompanyProfile{}, err
	}

	// Side-fetch failures, including 401, only substitute the default profile.
	company := c.company.Fetch(apiclient.WithAnonymous(ctx), resp.CompanyID)
	c.setState(domainsession.StateAuthenticated)
	c.navigator.Navigate(ctx, domainsession.ViewDashboard)
	return company, nil
}

// persistLogin writes the session in an order that keeps the access token last,
// so nothing observes an authenticated session before tenant and deadline are in place.
func (c *SessionController) persistLogin(ctx context.Context, resp loginResponse, tenant string) error {
	profile := resp.UserProfile
	profile.TenantName = tenant
	userData, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode user profile: %w", err)
	}

	if err := c.store.Set(ctx, domainsession.KeyRefreshToken, resp.Refresh); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	if err := c.store.Set(ctx, domainsession.KeyUserData, string(userData)); err != nil {
		return fmt.Errorf("persist user profile: %w", err)
	}
	if err := c.tenants.SetTenant(ctx, tenant); err != nil {
		return err
	}
	deadline := c.clock.Now().Add(c.idle)
	if err := c.store.Set(ctx, domainsession.KeyTokenExpiration, domainsession.FormatDeadline(deadline)); err != nil {
		return fmt.Errorf("persist idle deadline: %w", err)
	}
	if err := c.store.Set(ctx, domainsession.KeyAccessToken, resp.Access); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	return nil
}

func (c *SessionController) rollbackLogin(ctx context.Context) {
	c.safely(ctx, "clear partial session", func() error {
		return c.store.Clear(ctx, domainsession.AllKeys()...)
	})
	c.safely(ctx, "reset tenant", func() error { return c.tenants.Reset(ctx) })
}

func (c *SessionController) rejectLogin(ctx context.Context, log *slog.Logger, cause error) error {
	msg := loginFailedMessage
	if detail, ok := extractDetail(c.evaluator, c.detailExpr, apiclient.ResponseBody(cause)); ok {
		msg = detail
	}

	result := metrics.LoginRejected
	if apiclient.StatusCode(cause) == 0 {
		result = metrics.LoginFailed
	}
	c.metrics.LoginAttempt(result)
	log.WarnContext(ctx, "login failed",
		"status", apiclient.StatusCode(cause),
		"error_type", obserrors.Classify(cause),
		"error", cause,
	)
	return apperrors.CredentialRejected(msg, cause)
}

// Logout ends the session on the user's request.
func (c *SessionController) Logout(ctx context.Context) {
	c.Terminate(ctx, domainsession.ReasonUser)
}

// Terminate clears every session key in one pass, resets the tenant and returns to Anonymous.
// Concurrent calls share one teardown. The login view is shown only when a session actually ended.
// Cancellation of ctx does not abort the teardown: watchers call this while shutting down.
func (c *SessionController) Terminate(ctx context.Context, reason domainsession.TerminationReason) {
	ctx = context.WithoutCancel(ctx)
	_, _, _ = c.group.Do("terminate", func() (any, error) {
		c.terminate(ctx, reason)
		return nil, nil
	})
}

func (c *SessionController) terminate(ctx context.Context, reason domainsession.TerminationReason) {
	log := c.logger.With("reason", reason)
	if !c.clearSession(ctx) {
		log.DebugContext(ctx, "no active session to end")
		return
	}

	c.metrics.Terminated(reason)
	log.InfoContext(ctx, "session ended")
	c.safely(ctx, "navigate to login", func() error {
		c.navigator.Navigate(ctx, domainsession.ViewLogin)
		return nil
	})
}

// clearSession wipes persisted state under commitMu and reports whether a session was active.
func (c *SessionController) clearSession(ctx context.Context) bool {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	tokenPresent := false
	c.safely(ctx, "read access token", func() error {
		ok, err := hasAccessToken(ctx, c.store)
		tokenPresent = ok
		return err
	})

	c.safely(ctx, "clear session", func() error {
		return c.store.Clear(ctx, domainsession.AllKeys()...)
	})
	c.safely(ctx, "reset tenant", func() error { return c.tenants.Reset(ctx) })

	prev := c.setState(domainsession.StateAnonymous)
	return prev == domainsession.StateAuthenticated || tokenPresent
}

// safely runs a teardown step, logging errors and recovering panics.
func (c *SessionController) safely(ctx context.Context, step string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "panic during session teardown", "step", step, "panic", r)
		}
	}()
	if err := fn(); err != nil {
		c.logger.ErrorContext(ctx, "session teardown step failed", "step", step, "error", err)
	}
}

// Profile returns the stored user profile.
func (c *SessionController) Profile(ctx context.Context) (domainsession.UserProfile, bool) {
	raw, ok, err := c.store.Get(ctx, domainsession.KeyUserData)
	if err != nil || !ok {
		if err != nil {
			c.logger.WarnContext(ctx, "read user profile failed", "error", err)
		}
		return domainsession.UserProfile{}, false
	}
	var p domainsession.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		c.logger.WarnContext(ctx, "stored user profile is malformed", "error", err)
		return domainsession.UserProfile{}, false
	}
	return p, true
}

// Company returns the cached company profile.
func (c *SessionController) Company(ctx context.Context) (domainsession.CompanyProfile, bool) {
	raw, ok, err := c.store.Get(ctx, domainsession.KeyCompanyData)
	if err != nil || !ok {
		if err != nil {
			c.logger.WarnContext(ctx, "read company profile failed", "error", err)
		}
		return domainsession.CompanyProfile{}, false
	}
	cp, err := domainsession.ParseCompanyProfile([]byte(raw))
	if err != nil {
		c.logger.WarnContext(ctx, "stored company profile is malformed", "error", err)
		return domainsession.CompanyProfile{}, false
	}
	return cp, true
}

// Tenant returns the active tenant identifier.
func (c *SessionController) Tenant() string { return c.tenants.Current() }

// SwitchTenant activates another tenant while anonymous, so the next login is routed to it.
func (c *SessionController) SwitchTenant(ctx context.Context, tenant string) error {
	if c.State() == domainsession.StateAuthenticated {
		return apperrors.Validation("log out before switching tenant")
	}
	return c.tenants.SetTenant(ctx, tenant)
}

func hasAccessToken(ctx context.Context, store ports.CredentialStore) (bool, error) {
	v, ok, err := store.Get(ctx, domainsession.KeyAccessToken)
	if err != nil {
		return false, err
	}
	return ok && v != "", nil
}
