package config

import "strings"

// TenantPlaceholder is replaced by the tenant identifier in BaseURLTemplate.
const TenantPlaceholder = "{tenant}"

const defaultBaseURLTemplate = "http://" + TenantPlaceholder + ".localhost:8000/"

// TenantConfig controls how a tenant identifier maps to a backend base address.
type TenantConfig struct {
	// BaseURLTemplate is the backend address with {tenant} standing in for the tenant identifier.
	BaseURLTemplate string `env:"TENANT_BASE_URL_TEMPLATE" envDefault:"http://{tenant}.localhost:8000/"`
}

// Sanitize restores the default template when the configured one is blank
// and ensures the template ends with a slash so relative API paths resolve under it.
func (c *TenantConfig) Sanitize() {
	c.BaseURLTemplate = strings.TrimSpace(c.BaseURLTemplate)
	if c.BaseURLTemplate == "" {
		c.BaseURLTemplate = defaultBaseURLTemplate
	}
	if !strings.HasSuffix(c.BaseURLTemplate, "/") {
		c.BaseURLTemplate += "/"
	}
}
