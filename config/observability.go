package config

import (
	"log/slog"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// ObservabilityConfig groups logging and metrics configuration.
type ObservabilityConfig struct {
	LogLevel  string    `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat LogFormat `env:"LOG_FORMAT" envDefault:"text"`

	// MetricsAddr exposes Prometheus metrics when set (e.g. ":9464").
	MetricsAddr string `env:"METRICS_ADDR"`
}

// Sanitize normalises logging values.
func (c *ObservabilityConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch LogFormat(strings.ToLower(string(c.LogFormat))) {
	case LogFormatJSON:
		c.LogFormat = LogFormatJSON
	default:
		c.LogFormat = LogFormatText
	}
	c.MetricsAddr = strings.TrimSpace(c.MetricsAddr)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *ObservabilityConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MetricsEnabled reports whether a metrics listener should be started.
func (c *ObservabilityConfig) MetricsEnabled() bool {
	return c.MetricsAddr != ""
}
