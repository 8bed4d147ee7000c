package memory

import (
	"context"
	"fmt"

	"digital-wallet/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyRepository with a unique key.
type IdempotencyRepo struct {
	store *Store
}

func NewIdempotencyRepo(store *Store) *IdempotencyRepo {
	return &IdempotencyRepo{store: store}
}

func (r *IdempotencyRepo) Create(_ context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	_, exists := r.store.idempotency[log.Key]
	r.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("insert idempotency log: %w", domain.ErrDuplicateKey)
	}

	row := *log
	return mt.stage(func(s *Store) error {
		if _, ok := s.idempotency[row.Key]; ok {
			return fmt.Errorf("insert idempotency log: %w", domain.ErrDuplicateKey)
		}
		s.idempotency[row.Key] = row
		return nil
	})
}

func (r *IdempotencyRepo) Get(_ context.Context, key string) (*domain.IdempotencyLog, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	log, ok := r.store.idempotency[key]
	if !ok {
		return nil, nil
	}
	return &log, nil
}
