package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/data/pgxutil"
	apperrors "github.com/Currypiekers/bestattungssoftware-portfolio/internal/errors"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/ports"
	"github.com/jackc/pgx/v5"
)

var _ ports.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo persists session keys in the session_credentials table, scoped by namespace.
// A namespace identifies one client installation sharing the database.
type CredentialRepo struct {
	DB        *sql.DB
	namespace string
	clock     ports.Clock
}

// CredentialRepoOptions configures a CredentialRepo.
type CredentialRepoOptions struct {
	DB        *sql.DB
	Namespace string
	Clock     ports.Clock // optional; updated_at uses UTC wall time when nil
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(opts CredentialRepoOptions) (*CredentialRepo, error) {
	if opts.DB == nil {
		return nil, errors.New("database is required")
	}
	if opts.Namespace == "" {
		return nil, ErrNamespaceRequired
	}
	return &CredentialRepo{DB: opts.DB, namespace: opts.Namespace, clock: opts.Clock}, nil
}

func (r *CredentialRepo) now() time.Time {
	if r.clock != nil {
		return r.clock.Now()
	}
	return time.Now().UTC()
}

const (
	credentialGetQuery = `SELECT value FROM session_credentials WHERE namespace = $1 AND key = $2`

	credentialUpsertQuery = `
		INSERT INTO session_credentials (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	credentialDeleteQuery = `DELETE FROM session_credentials WHERE namespace = $1 AND key = ANY($2)`
)

// Get returns the stored value for key. A missing row is ok == false.
func (r *CredentialRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyRequired
	}
	var value string
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, credentialGetQuery, r.namespace, key).Scan(&value)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get credential %s: %w", key, apperrors.MapDBError(err))
	}
	return value, true, nil
}

// Set upserts key.
func (r *CredentialRepo) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrKeyRequired
	}
	now := r.now()
	if _, err := r.DB.ExecContext(ctx, credentialUpsertQuery, r.namespace, key, value, now); err != nil {
		return fmt.Errorf("set credential %s: %w", key, apperrors.MapDBError(err))
	}
	return nil
}

// Clear deletes keys in one transaction.
func (r *CredentialRepo) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := pgxutil.Tx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, credentialDeleteQuery, r.namespace, keys)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("clear credentials: %w", apperrors.MapDBError(err))
	}
	return nil
}
