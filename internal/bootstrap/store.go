package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Currypiekers/bestattungssoftware-portfolio/config"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/filestore"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/memstore"
	redisstore "github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/redis"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/adapters/sealed"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/data"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"github.com/redis/go-redis/v9"
)

// StoreDeps groups inputs for OpenStore.
type StoreDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger

	// RedisClient, when set, is used instead of dialing Config.Redis.
	RedisClient redis.UniversalClient
}

// OpenedStore is a credential store plus the func releasing its connections.
type OpenedStore struct {
	Store   ports.CredentialStore
	Backend config.StoreBackend
	Close   func() error
}

func noopClose() error { return nil }

// OpenStore builds the credential store selected by Config.Store.Backend,
// sealing the token pair when an encryption key is configured.
func OpenStore(ctx context.Context, deps StoreDeps) (*OpenedStore, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opened, err := openBackend(ctx, deps, logger)
	if err != nil {
		return nil, err
	}
	if !deps.Config.Store.SealingEnabled() {
		return opened, nil
	}

	store, err := sealStore(opened.Store, deps.Config.Store.EncryptionKey, logger)
	if err != nil {
		return nil, errors.Join(err, opened.Close())
	}
	logger.InfoContext(ctx, "credential sealing enabled", "keys", sealed.DefaultKeys())
	opened.Store = store
	return opened, nil
}

func sealStore(inner ports.CredentialStore, encodedKey string, logger *slog.Logger) (*sealed.Store, error) {
	key, err := sealed.ParseKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("store encryption key: %w", err)
	}
	sealer, err := sealed.NewAESGCM(key)
	if err != nil {
		return nil, err
	}
	return sealed.New(sealed.Options{Inner: inner, Sealer: sealer, Logger: logger})
}

func openBackend(ctx context.Context, deps StoreDeps, logger *slog.Logger) (*OpenedStore, error) {
	cfg := deps.Config

	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		logger.WarnContext(ctx, "using in-memory credential store; sessions do not survive a restart")
		return &OpenedStore{Store: memstore.New(), Backend: cfg.Store.Backend, Close: noopClose}, nil

	case config.StoreBackendFile, "":
		fs, err := filestore.Open(cfg.Store.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open credential file: %w", err)
		}
		logger.InfoContext(ctx, "credential store ready", "backend", config.StoreBackendFile, "path", fs.Path())
		return &OpenedStore{Store: fs, Backend: config.StoreBackendFile, Close: noopClose}, nil

	case config.StoreBackendRedis:
		return openRedisStore(ctx, deps, logger)

	case config.StoreBackendPostgres:
		return openPostgresStore(ctx, cfg, logger)

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func openRedisStore(ctx context.Context, deps StoreDeps, logger *slog.Logger) (*OpenedStore, error) {
	cfg := deps.Config
	client := deps.RedisClient
	closeFn := noopClose
	if client == nil {
		var err error
		client, err = ConnectRedis(ctx, DatabaseConfig{RedisConfig: cfg.Redis, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		closeFn = client.Close
	}

	store, err := redisstore.NewCredentialStore(redisstore.CredentialStoreOptions{
		Client:    client,
		KeyPrefix: cfg.Store.KeyPrefix,
		Namespace: cfg.Store.Namespace,
	})
	if err != nil {
		return nil, errors.Join(err, closeFn())
	}
	logger.InfoContext(ctx, "credential store ready", "backend", config.StoreBackendRedis, "namespace", cfg.Store.Namespace)
	return &OpenedStore{Store: store, Backend: config.StoreBackendRedis, Close: closeFn}, nil
}

func openPostgresStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*OpenedStore, error) {
	db, err := ConnectDB(ctx, DatabaseConfig{DBConfig: cfg.Postgres, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if err = RunMigrations(ctx, db, logger); err != nil {
			return nil, errors.Join(err, db.Close())
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	repo, err := data.NewCredentialRepo(data.CredentialRepoOptions{DB: db, Namespace: cfg.Store.Namespace})
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	logger.InfoContext(ctx, "credential store ready", "backend", config.StoreBackendPostgres, "namespace", cfg.Store.Namespace)
	return &OpenedStore{Store: repo, Backend: config.StoreBackendPostgres, Close: db.Close}, nil
}
