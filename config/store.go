package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StoreBackend selects the credential store implementation.
type StoreBackend string

const (
	// StoreBackendFile persists credentials in a JSON file (default).
	StoreBackendFile StoreBackend = "file"
	// StoreBackendMemory keeps credentials in process memory only.
	StoreBackendMemory StoreBackend = "memory"
	// StoreBackendRedis persists credentials in Redis.
	StoreBackendRedis StoreBackend = "redis"
	// StoreBackendPostgres persists credentials in PostgreSQL.
	StoreBackendPostgres StoreBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreBackend.
func (b *StoreBackend) UnmarshalText(text []byte) error {
	v := StoreBackend(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case StoreBackendFile, StoreBackendMemory, StoreBackendRedis, StoreBackendPostgres:
		*b = v
		return nil
	default:
		return fmt.Errorf("invalid StoreBackend: %q (valid options: file, memory, redis, postgres)", v)
	}
}

// StoreConfig contains credential store configuration.
type StoreConfig struct {
	Backend StoreBackend `env:"STORE_BACKEND" envDefault:"file"`

	// FilePath is the JSON document used by the file backend.
	// Defaults to <user config dir>/portal-session/credentials.json.
	FilePath string `env:"STORE_FILE_PATH"`

	// KeyPrefix namespaces keys in Redis.
	KeyPrefix string `env:"STORE_KEY_PREFIX" envDefault:"portal:session:"`

	// Namespace separates credential sets sharing one Postgres table.
	Namespace string `env:"STORE_NAMESPACE" envDefault:"default"`

	// EncryptionKey, when set, seals the token pair at rest with AES-256-GCM.
	// Base64 of 32 random bytes.
	EncryptionKey string `env:"STORE_ENCRYPTION_KEY"`
}

// Sanitize fills derived defaults.
func (c *StoreConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = StoreBackendFile
	}
	c.FilePath = strings.TrimSpace(c.FilePath)
	if c.FilePath == "" {
		c.FilePath = defaultStoreFilePath()
	}
	if c.Namespace = strings.TrimSpace(c.Namespace); c.Namespace == "" {
		c.Namespace = "default"
	}
	c.EncryptionKey = strings.TrimSpace(c.EncryptionKey)
}

// SealingEnabled reports whether stored tokens are encrypted.
func (c *StoreConfig) SealingEnabled() bool {
	return c.EncryptionKey != ""
}

func defaultStoreFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "portal-session", "credentials.json")
}

// RedisConfig contains Redis configuration for the redis store backend.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// DBConfig contains PostgreSQL configuration for the postgres store backend.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"portal"`
	Password string `env:"PASSWORD" envDefault:"portal"`
	Name     string `env:"NAME"     envDefault:"portal"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the credential table is created during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}
