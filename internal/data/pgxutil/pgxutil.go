// Package pgxutil reaches the native pgx API through a database/sql pool opened with the pgx driver.
package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// ErrForeignDriver is returned when the pool was not opened with the pgx stdlib driver.
var ErrForeignDriver = errors.New("pgxutil: driver connection is not *stdlib.Conn")

// Conn checks out one pooled connection and hands its *pgx.Conn to fn.
// The connection returns to the pool when fn returns.
func Conn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) error {
	sc, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("checkout connection: %w", err)
	}
	defer func() { _ = sc.Close() }()

	return sc.Raw(func(driverConn any) error {
		pc, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return ErrForeignDriver
		}
		return fn(pc.Conn())
	})
}

// Tx runs fn inside a pgx transaction. fn's error rolls the transaction back and is returned as is.
func Tx(ctx context.Context, db *sql.DB, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	return Conn(ctx, db, func(c *pgx.Conn) error {
		return pgx.BeginTxFunc(ctx, c, opts, fn)
	})
}
