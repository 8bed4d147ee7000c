package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-wallet/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const idempotencyColumns = `key, transaction_id, response_json, created_at`

// IdempotencyRepo stores the durable copy of every settled request key.
// The redis cache sits in front of it; this table is the source of truth.
type IdempotencyRepo struct {
	pool Pool
}

func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Create runs inside the settlement transaction so the key and the ledger
// entry commit together. A reused key yields domain.ErrDuplicateKey.
func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.IdempotencyLog) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO idempotency_logs (`+idempotencyColumns+`) VALUES ($1, $2, $3, $4)`,
		entry.Key, entry.TransactionID, entry.ResponseJSON, entry.CreatedAt,
	)
	return classify("insert idempotency log", err)
}

// Get returns nil, nil for a key that was never settled.
func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+idempotencyColumns+` FROM idempotency_logs WHERE key = $1`, key)

	var entry domain.IdempotencyLog
	switch err := row.Scan(&entry.Key, &entry.TransactionID, &entry.ResponseJSON, &entry.CreatedAt); {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("select idempotency log %q: %w", key, err)
	}
	return &entry, nil
}
