package config

// AppConfig is the main configuration struct for the portal session client.
// It composes domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - tenant.go: Tenant base address derivation
//   - session.go: Idle timeout and expiry watcher intervals
//   - http.go: Request pipeline (API client) settings
//   - store.go: Credential store backend, Redis and Postgres settings
//   - observability.go: Logging and metrics
type AppConfig struct {
	// AppName is shown in the CLI banner and attached to log records.
	AppName string `env:"APP_NAME" envDefault:"Portal Session"`

	Tenant        TenantConfig
	Session       SessionConfig
	Client        ClientConfig
	Store         StoreConfig
	Redis         RedisConfig `envPrefix:"REDIS_"`
	Postgres      DBConfig    `envPrefix:"DB_"`
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Tenant.Sanitize()
	c.Session.Sanitize()
	c.Client.Sanitize()
	c.Store.Sanitize()
	c.Observability.Sanitize()
}
