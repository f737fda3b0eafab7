package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/docdeck/internal/errs"
)

// PostgreSQL SQLSTATE error codes
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
	pgErrInvalidText         = "22P02"
	pgErrInvalidPassword     = "28P01"
	pgErrInvalidAuth         = "28000"
	pgErrInsufficientPriv    = "42501"
	pgErrUndefinedTable      = "42P01"
	pgErrUndefinedColumn     = "42703"
	pgErrInvalidDatabase     = "3D000"
	pgErrQueryCanceled       = "57014"
)

// mapError converts a pgx error into *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgErrUniqueViolation, pgErr.Code == pgErrForeignKeyViolation:
			return errs.Wrap(errs.ErrKindConflict, msg, err)
		case pgErr.Code == pgErrInvalidPassword, pgErr.Code == pgErrInvalidAuth, pgErr.Code == pgErrInsufficientPriv:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case pgErr.Code == pgErrUndefinedTable, pgErr.Code == pgErrInvalidDatabase:
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case pgErr.Code == pgErrInvalidText, pgErr.Code == pgErrUndefinedColumn:
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		case pgErr.Code == pgErrQueryCanceled:
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

// isMissingDatabase reports whether err says the target database does not exist.
func isMissingDatabase(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrInvalidDatabase
}
