package mongo

import (
	"context"
	"errors"

	"github.com/koustreak/docdeck/internal/errs"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
)

// MongoDB server error codes (the ones the console distinguishes)
// Full list: https://www.mongodb.com/docs/manual/reference/error-codes/
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
	codeNamespaceNotFound    = 26
	codeInvalidNamespace     = 73
)

// mapError translates mongo-driver errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || mongodrv.IsTimeout(err) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, mongodrv.ErrNoDocuments) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	if errors.Is(err, mongodrv.ErrClientDisconnected) || mongodrv.IsNetworkError(err) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	if mongodrv.IsDuplicateKeyError(err) {
		return errs.Wrap(errs.ErrKindConflict, msg, err)
	}

	var srvErr mongodrv.ServerError
	if errors.As(err, &srvErr) {
		switch {
		case srvErr.HasErrorCode(codeUnauthorized), srvErr.HasErrorCode(codeAuthenticationFailed):
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case srvErr.HasErrorCode(codeNamespaceNotFound):
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case srvErr.HasErrorCode(codeInvalidNamespace):
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}

	var encErr mongodrv.MarshalError
	if errors.As(err, &encErr) {
		return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
	}

	// Anything else came from the driver before reaching the server,
	// usually server selection.
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
