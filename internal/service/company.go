package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/observability/metrics"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
)

// CompanyFetcherOptions groups dependencies for CompanyFetcher.
type CompanyFetcherOptions struct {
	Client  ports.APIClient       // Required: request pipeline
	Store   ports.CredentialStore // Required: receives company_data
	Metrics ports.SessionMetrics  // Optional: fallback counter
	Logger  *slog.Logger          // Optional: structured logger
}

// CompanyFetcher caches the presentational company profile after login.
// It never fails: any problem stores and returns the default profile.
type CompanyFetcher struct {
	client  ports.APIClient
	store   ports.CredentialStore
	metrics ports.SessionMetrics
	logger  *slog.Logger
}

// NewCompanyFetcher constructs a CompanyFetcher.
func NewCompanyFetcher(opts CompanyFetcherOptions) (*CompanyFetcher, error) {
	if opts.Client == nil {
		return nil, errors.New("APIClient is required")
	}
	if opts.Store == nil {
		return nil, errors.New("CredentialStore is required")
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.Noop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CompanyFetcher{
		client:  opts.Client,
		store:   opts.Store,
		metrics: m,
		logger:  logger.With("component", "company_fetcher"),
	}, nil
}

// CompanyPath is the profile endpoint relative to the tenant base address.
func CompanyPath(id int64) string {
	return fmt.Sprintf("api/company/%d/", id)
}

// Fetch loads the company profile for id and stores it under company_data.
func (f *CompanyFetcher) Fetch(ctx context.Context, id *int64) domainsession.CompanyProfile {
	profile, err := f.load(ctx, id)
	if err != nil {
		f.logger.WarnContext(ctx, "company profile unavailable; using default", "error", err)
		f.metrics.CompanyFallback()
		profile = domainsession.DefaultCompanyProfile()
	}

	if setErr := f.store.Set(ctx, domainsession.KeyCompanyData, string(profile.Raw)); setErr != nil {
		f.logger.ErrorContext(ctx, "persist company profile failed", "error", setErr)
	}
	return profile
}

func (f *CompanyFetcher) load(ctx context.Context, id *int64) (domainsession.CompanyProfile, error) {
	if id == nil {
		return domainsession.CompanyProfile{}, errors.New("user has no company id")
	}

	var body map[string]any
	if err := f.client.Get(ctx, CompanyPath(*id), &body); err != nil {
		return domainsession.CompanyProfile{}, fmt.Errorf("fetch company %d: %w", *id, err)
	}
	if body == nil {
		return domainsession.CompanyProfile{}, fmt.Errorf("company %d: empty profile", *id)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return domainsession.CompanyProfile{}, fmt.Errorf("encode company %d: %w", *id, err)
	}
	return domainsession.ParseCompanyProfile(raw)
}
