package config

import (
	"strings"
	"time"
)

// ClientConfig contains request pipeline (API client) configuration.
type ClientConfig struct {
	// Timeout bounds every API call including the login exchange.
	Timeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"30s"`

	// UserAgent is sent with every request.
	UserAgent string `env:"CLIENT_USER_AGENT" envDefault:"portal-session/1.0"`

	// ErrorDetailExpr is a JMESPath expression selecting the user-facing message
	// from a rejected login response body.
	ErrorDetailExpr string `env:"CLIENT_ERROR_DETAIL_EXPR" envDefault:"detail"`
}

// Sanitize applies guardrails to client configuration values.
func (c *ClientConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	c.ErrorDetailExpr = strings.TrimSpace(c.ErrorDetailExpr)
	if c.ErrorDetailExpr == "" {
		c.ErrorDetailExpr = "detail"
	}
}
