package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/Currypiekers/bestattungssoftware-portfolio/config"
	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
)

// TenantResolverOptions groups dependencies for TenantResolver.
type TenantResolverOptions struct {
	Store    ports.CredentialStore   // Required: holds tenantName
	Pipeline ports.BaseAddressSetter // Required: receives the derived base address
	Template string                  // Optional: defaults to config.TenantConfig default
	Logger   *slog.Logger            // Optional: structured logger
}

// TenantResolver maps the active tenant to a backend base address and keeps the pipeline pointed at it.
type TenantResolver struct {
	store    ports.CredentialStore
	pipeline ports.BaseAddressSetter
	template string
	logger   *slog.Logger

	mu     sync.RWMutex
	tenant string
}

// DeriveBaseURL substitutes tenant into template. An empty tenant leaves an empty segment.
func DeriveBaseURL(template, tenant string) string {
	return strings.ReplaceAll(template, config.TenantPlaceholder, tenant)
}

// NewTenantResolver reads the persisted tenant and applies its base address to the pipeline.
func NewTenantResolver(ctx context.Context, opts TenantResolverOptions) (*TenantResolver, error) {
	if opts.Store == nil {
		return nil, errors.New("CredentialStore is required")
	}
	if opts.Pipeline == nil {
		return nil, errors.New("BaseAddressSetter is required")
	}
	template := opts.Template
	if template == "" {
		cfg := config.TenantConfig{}
		cfg.Sanitize()
		template = cfg.BaseURLTemplate
	}
	if !strings.Contains(template, config.TenantPlaceholder) {
		return nil, fmt.Errorf("tenant base URL template %q lacks %s", template, config.TenantPlaceholder)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &TenantResolver{
		store:    opts.Store,
		pipeline: opts.Pipeline,
		template: template,
		logger:   logger.With("component", "tenant_resolver"),
	}

	tenant, _, err := opts.Store.Get(ctx, domainsession.KeyTenantName)
	if err != nil {
		r.logger.WarnContext(ctx, "read persisted tenant failed; starting without tenant", "error", err)
		tenant = ""
	}
	if err := r.apply(tenant); err != nil {
		return nil, err
	}
	return r, nil
}

// SetTenant persists name and points the pipeline at its base address before returning.
// The pipeline is left untouched when persisting fails.
func (r *TenantResolver) SetTenant(ctx context.Context, name string) error {
	base := DeriveBaseURL(r.template, name)
	if u, err := url.Parse(base); err != nil || u.Host == "" {
		return fmt.Errorf("tenant %q does not yield a valid base address %q", name, base)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Set(ctx, domainsession.KeyTenantName, name); err != nil {
		return fmt.Errorf("persist tenant: %w", err)
	}
	if err := r.applyLocked(name); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "tenant activated", "tenant", name, "base_url", base)
	return nil
}

// Reset clears the in-memory tenant and points the pipeline at the tenant-less address.
// The persisted key is owned by the caller's teardown.
func (r *TenantResolver) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.applyLocked(""); err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "tenant reset")
	return nil
}

// Current returns the active tenant identifier.
func (r *TenantResolver) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tenant
}

// CurrentBaseAddress returns the base address derived from the active tenant.
func (r *TenantResolver) CurrentBaseAddress() string {
	return DeriveBaseURL(r.template, r.Current())
}

func (r *TenantResolver) apply(tenant string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyLocked(tenant)
}

func (r *TenantResolver) applyLocked(tenant string) error {
	if err := r.pipeline.SetBaseURL(DeriveBaseURL(r.template, tenant)); err != nil {
		return fmt.Errorf("apply base address for tenant %q: %w", tenant, err)
	}
	r.tenant = tenant
	return nil
}
