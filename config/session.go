package config

import "time"

// SessionConfig controls the expiration monitor.
type SessionConfig struct {
	// IdleTimeout is how long a session stays valid after the last user interaction.
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`

	// IdleCheckInterval is how often the idle deadline is compared against the clock.
	IdleCheckInterval time.Duration `env:"SESSION_IDLE_CHECK_INTERVAL" envDefault:"1m"`

	// ExpiryCheckInterval is how often the declared token expiry is inspected.
	ExpiryCheckInterval time.Duration `env:"SESSION_EXPIRY_CHECK_INTERVAL" envDefault:"10m"`

	// ActivityBuffer is the per-listener buffer of interaction events.
	ActivityBuffer int `env:"SESSION_ACTIVITY_BUFFER" envDefault:"64"`
}

// Sanitize applies guardrails to session timing values.
func (c *SessionConfig) Sanitize() {
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Minute
	}
	if c.IdleCheckInterval <= 0 {
		c.IdleCheckInterval = time.Minute
	}
	if c.ExpiryCheckInterval <= 0 {
		c.ExpiryCheckInterval = 10 * time.Minute
	}
	if c.ActivityBuffer < 1 {
		c.ActivityBuffer = 1
	}
}
