package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/docdeck/internal/errs"
)

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDuplicateEntry    = 1062
	errNoReferencedRow   = 1452
	errRowIsReferenced   = 1451
	errBadFieldError     = 1054
	errTruncatedValue    = 1366
	errAccessDenied      = 1045
	errDBAccessDenied    = 1044
	errTableAccessDenied = 1142
	errUnknownDatabase   = 1049
	errNoSuchTable       = 1146
	errQueryInterrupted  = 1317
	errConnRefused       = 2003
)

// mapError converts a MySQL driver error into *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errDuplicateEntry, errNoReferencedRow, errRowIsReferenced:
			return errs.Wrap(errs.ErrKindConflict, msg, err)
		case errAccessDenied, errDBAccessDenied, errTableAccessDenied:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case errUnknownDatabase, errNoSuchTable:
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case errBadFieldError, errTruncatedValue:
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		case errQueryInterrupted:
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		case errConnRefused:
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}

	if errors.Is(err, gomysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		}
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
