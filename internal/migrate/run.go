// Package migrate owns the SQL schema of the postgres credential backend.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ledgerTable records which schema steps a database already carries.
const ledgerTable = "session_schema_versions"

// step is one embedded schema change. Version is the file name without its extension.
type step struct {
	Version string
	Body    string
}

// Steps lists the embedded schema steps in apply order.
func Steps() ([]string, error) {
	steps, err := loadSteps(migrationsFS)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(steps))
	for _, s := range steps {
		versions = append(versions, s.Version)
	}
	return versions, nil
}

func loadSteps(fsys fs.FS) ([]step, error) {
	names, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list schema steps: %w", err)
	}
	slices.Sort(names)

	steps := make([]step, 0, len(names))
	for _, name := range names {
		body, readErr := fs.ReadFile(fsys, name)
		if readErr != nil {
			return nil, fmt.Errorf("read schema step %s: %w", name, readErr)
		}
		steps = append(steps, step{
			Version: strings.TrimSuffix(path.Base(name), ".sql"),
			Body:    string(body),
		})
	}
	return steps, nil
}

// Run brings db up to the embedded schema. Steps already in the ledger are skipped,
// so calling Run on every start is fine. A nil logger falls back to slog.Default.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if db == nil {
		return errors.New("database is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migrate")

	steps, err := loadSteps(migrationsFS)
	if err != nil {
		return err
	}

	if _, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+ledgerTable+` (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("create %s: %w", ledgerTable, err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, s := range steps {
		if _, done := applied[s.Version]; done {
			continue
		}
		logger.InfoContext(ctx, "applying schema step", "version", s.Version)
		if err = applyStep(ctx, db, s); err != nil {
			return err
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]struct{}, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM `+ledgerTable)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ledgerTable, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]struct{})
	for rows.Next() {
		var v string
		if err = rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", ledgerTable, err)
		}
		out[v] = struct{}{}
	}
	return out, rows.Err()
}

// applyStep runs the step body and its ledger row in one transaction.
func applyStep(ctx context.Context, db *sql.DB, s step) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("schema step %s: begin: %w", s.Version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, s.Body); err != nil {
		return fmt.Errorf("schema step %s: %w", s.Version, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO `+ledgerTable+` (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`,
		s.Version,
	); err != nil {
		return fmt.Errorf("schema step %s: record: %w", s.Version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("schema step %s: commit: %w", s.Version, err)
	}
	return nil
}
