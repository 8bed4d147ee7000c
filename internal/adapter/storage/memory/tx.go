package memory

import (
	"context"
	"errors"
	"fmt"

	"digital-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor over a Store.
type Transactor struct {
	store *Store
}

// NewTransactor creates a Transactor for store.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// Begin starts a unit of work.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &memTx{store: t.store}, nil
}

// memTx stages writes and applies them atomically at Commit. Only Commit and
// Rollback are part of the unit-of-work contract; the embedded pgx.Tx is nil
// and any other method panics.
type memTx struct {
	pgx.Tx

	store  *Store
	ops    []func(*Store) error
	locked []uuid.UUID
	done   bool
}

func (tx *memTx) stage(op func(*Store) error) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.ops = append(tx.ops, op)
	return nil
}

func (tx *memTx) holds(walletID uuid.UUID) bool {
	for _, id := range tx.locked {
		if id == walletID {
			return true
		}
	}
	return false
}

func (tx *memTx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	defer tx.release()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every op against a scratch copy first so a failing op leaves
	// committed state untouched.
	scratch := s.snapshot()
	for _, op := range tx.ops {
		if err := op(scratch); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	s.restore(scratch)
	return nil
}

func (tx *memTx) Rollback(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.release()
	return nil
}

func (tx *memTx) release() {
	tx.done = true
	tx.ops = nil
	for _, id := range tx.locked {
		tx.store.unlockWallet(id)
	}
	tx.locked = nil
}

func asMemTx(tx pgx.Tx) (*memTx, error) {
	mt, ok := tx.(*memTx)
	if !ok {
		return nil, errors.New("memory store: foreign transaction handle")
	}
	if mt.done {
		return nil, pgx.ErrTxClosed
	}
	return mt, nil
}

// snapshot copies the mutable tables. Callers hold mu.
func (s *Store) snapshot() *Store {
	c := &Store{
		users:        s.users,
		merchants:    s.merchants,
		items:        s.items,
		audit:        s.audit,
		wallets:      make(map[uuid.UUID]domain.Wallet, len(s.wallets)),
		walletByUser: make(map[uuid.UUID]uuid.UUID, len(s.walletByUser)),
		idempotency:  make(map[string]domain.IdempotencyLog, len(s.idempotency)),
		transactions: s.transactions[:len(s.transactions):len(s.transactions)],
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.walletByUser {
		c.walletByUser[k] = v
	}
	for k, v := range s.idempotency {
		c.idempotency[k] = v
	}
	return c
}

func (s *Store) restore(c *Store) {
	s.wallets = c.wallets
	s.walletByUser = c.walletByUser
	s.idempotency = c.idempotency
	s.transactions = c.transactions
}
