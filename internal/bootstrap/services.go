package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Currypiekers/bestattungssoftware-portfolio/config"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/activity"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/jwtclaims"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/navigation"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/apiclient"
	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/observability/metrics"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

// SessionContainer holds the wired session components.
type SessionContainer struct {
	Store      ports.CredentialStore
	Client     *apiclient.Client
	Tenants    *service.TenantResolver
	Company    *service.CompanyFetcher
	Controller *service.SessionController
	Activity   *activity.Bus
	Monitor    *service.Monitor
	Navigator  *navigation.Recorder
	Metrics    ports.SessionMetrics
}

// SessionDeps groups dependencies for session initialization.
type SessionDeps struct {
	Config *config.AppConfig
	Store  ports.CredentialStore
	Logger *slog.Logger

	// Registerer receives the session collectors. Metrics are disabled when nil.
	Registerer prometheus.Registerer
	// HTTPClient overrides the pipeline's transport (tests, proxies).
	HTTPClient *http.Client
	// OnNavigate is called after every view transition.
	OnNavigate func(domainsession.View)
	// Clock overrides the wall clock used by the controller and both watchers.
	Clock ports.Clock
}

// NewSession wires the request pipeline, tenant resolver, session controller and expiration monitor.
// The monitor is returned stopped.
func NewSession(ctx context.Context, deps *SessionDeps) (*SessionContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("session config is required")
	}
	if deps.Store == nil {
		return nil, errors.New("credential store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	sessionMetrics, err := buildMetrics(deps.Registerer)
	if err != nil {
		return nil, err
	}

	client, err := apiclient.New(apiclient.Options{
		// Replaced by the tenant resolver before any request is issued.
		BaseURL:    service.DeriveBaseURL(cfg.Tenant.BaseURLTemplate, "tenant"),
		Timeout:    cfg.Client.Timeout,
		UserAgent:  cfg.Client.UserAgent,
		HTTPClient: deps.HTTPClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}
	client.UseRequest(apiclient.RequestIDInterceptor())
	client.UseRequest(apiclient.BearerInterceptor(deps.Store, logger))

	tenants, err := service.NewTenantResolver(ctx, service.TenantResolverOptions{
		Store:    deps.Store,
		Pipeline: client,
		Template: cfg.Tenant.BaseURLTemplate,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create tenant resolver: %w", err)
	}

	company, err := service.NewCompanyFetcher(service.CompanyFetcherOptions{
		Client:  client,
		Store:   deps.Store,
		Metrics: sessionMetrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create company fetcher: %w", err)
	}

	nav := navigation.NewRecorder(domainsession.ViewLogin, deps.OnNavigate, logger)

	controller, err := service.NewSessionController(ctx, service.SessionControllerOptions{
		Store:           deps.Store,
		Client:          client,
		Tenants:         tenants,
		Company:         company,
		Navigator:       nav,
		IdleTimeout:     cfg.Session.IdleTimeout,
		ErrorDetailExpr: cfg.Client.ErrorDetailExpr,
		Clock:           deps.Clock,
		Metrics:         sessionMetrics,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create session controller: %w", err)
	}
	client.UseResponse(apiclient.UnauthorizedGuard(controller))
	if controller.State() == domainsession.StateAuthenticated {
		nav.Navigate(ctx, domainsession.ViewDashboard)
	}

	monitor, bus, err := buildMonitor(cfg.Session, deps, controller, sessionMetrics, logger)
	if err != nil {
		return nil, err
	}

	return &SessionContainer{
		Store:      deps.Store,
		Client:     client,
		Tenants:    tenants,
		Company:    company,
		Controller: controller,
		Activity:   bus,
		Monitor:    monitor,
		Navigator:  nav,
		Metrics:    sessionMetrics,
	}, nil
}

//nolint:ireturn // callers only need the port.
func buildMetrics(reg prometheus.Registerer) (ports.SessionMetrics, error) {
	if reg == nil {
		return metrics.Noop{}, nil
	}
	m, err := metrics.NewSession(reg)
	if err != nil {
		return nil, fmt.Errorf("register session metrics: %w", err)
	}
	return m, nil
}

func buildMonitor(
	cfg config.SessionConfig,
	deps *SessionDeps,
	terminator ports.SessionTerminator,
	sessionMetrics ports.SessionMetrics,
	logger *slog.Logger,
) (*service.Monitor, *activity.Bus, error) {
	busOpts := activity.BusOptions{Buffer: cfg.ActivityBuffer, Logger: logger}
	if deps.Clock != nil {
		busOpts.Now = deps.Clock.Now
	}
	bus := activity.NewBus(busOpts)

	expiry, err := service.NewExpiryWatcher(service.ExpiryWatcherOptions{
		Store:      deps.Store,
		Decoder:    jwtclaims.Decoder{},
		Terminator: terminator,
		Interval:   cfg.ExpiryCheckInterval,
		Clock:      deps.Clock,
		Metrics:    sessionMetrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create expiry watcher: %w", err)
	}

	idle, err := service.NewIdleWatcher(service.IdleWatcherOptions{
		Store:      deps.Store,
		Terminator: terminator,
		Window:     cfg.IdleTimeout,
		Interval:   cfg.IdleCheckInterval,
		Clock:      deps.Clock,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create idle watcher: %w", err)
	}

	monitor, err := service.NewMonitor(service.MonitorOptions{
		Expiry:   expiry,
		Idle:     idle,
		Activity: bus,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create expiration monitor: %w", err)
	}
	return monitor, bus, nil
}
