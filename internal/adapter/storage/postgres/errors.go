package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-wallet/internal/core/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// classify wraps a driver error with the matching domain sentinel so the
// service layer can tell duplicates and write conflicts from other failures.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicateKey, err)
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteConflict, err)
		case pgerrcode.QueryCanceled:
			return fmt.Errorf("%s: %w: %w", op, context.DeadlineExceeded, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
