package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const msgStoreUnreachable = "Credential store is unreachable."

// pgCodes maps the SQLSTATEs the credential table can raise to an AppError code and message.
var pgCodes = map[string]struct {
	code ErrorCode
	msg  string
}{
	pgerrcode.UniqueViolation:  {ErrCodeConflict, "Credential key already exists."},
	pgerrcode.NotNullViolation: {ErrCodeValidation, "Invalid credential value."},
	pgerrcode.CheckViolation:   {ErrCodeValidation, "Invalid credential value."},
	pgerrcode.UndefinedTable:   {ErrCodeInternal, "Credential table is missing. Run migrations."},
}

// MapDBError turns errors from the postgres credential store into AppErrors.
// Errors it does not recognize are returned unchanged.
func MapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Code: ErrCodeTimeout, Message: "Credential store timed out.", Cause: err}
	case errors.Is(err, context.Canceled):
		return &AppError{Code: ErrCodeCanceled, Message: "Credential store request was canceled.", Cause: err}
	case errors.Is(err, pgx.ErrNoRows):
		return &AppError{Code: ErrCodeNotFound, Message: "Credential not found", Cause: err}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &AppError{Code: ErrCodeUnavailable, Message: msgStoreUnreachable, Cause: err}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if m, ok := pgCodes[pgErr.Code]; ok {
		return &AppError{Code: m.code, Message: m.msg, Field: pgErr.ColumnName, Cause: pgErr}
	}
	if pgerrcode.IsConnectionException(pgErr.Code) {
		return &AppError{Code: ErrCodeUnavailable, Message: msgStoreUnreachable, Cause: pgErr}
	}
	return &AppError{Code: ErrCodeInternal, Message: "A database error occurred. Please try again.", Cause: pgErr}
}
