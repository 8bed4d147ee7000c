package service

import (
	"context"
	"errors"
	"fmt"

	"digital-wallet/internal/core/domain"
	"digital-wallet/pkg/apperror"
)

// storeError maps a store failure to the error kind returned to callers.
// AppErrors pass through untouched.
func storeError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperror.ErrTimeout(wrapped)
	case errors.Is(err, domain.ErrWriteConflict):
		return apperror.ErrConflict(wrapped)
	default:
		return apperror.ErrDatabaseError(wrapped)
	}
}

// commitError classifies a failed commit. Anything other than a caller
// deadline means the unit of work lost a race and must be retried.
func commitError(err error) error {
	wrapped := fmt.Errorf("commit tx: %w", err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.ErrTimeout(wrapped)
	}
	return apperror.ErrConflict(wrapped)
}

// errorCode returns the AppError code of err, or "SYS_000" for untyped errors.
func errorCode(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "SYS_000"
}

// isServerError reports whether err should be logged at error level.
func isServerError(err error) bool {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus >= 500
	}
	return true
}
