// Package memory is an in-process ledger store with the same unit-of-work
// contract as the PostgreSQL adapter. Wallet rows are locked from the
// for-update read until commit or rollback, and staged writes become visible
// together at commit.
package memory

import (
	"context"
	"sync"

	"digital-wallet/internal/core/domain"

	"github.com/google/uuid"
)

// Store holds every table. Committed data is guarded by mu; wallet row locks
// live in locks and are independent of mu.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]domain.User
	wallets      map[uuid.UUID]domain.Wallet // by wallet id
	walletByUser map[uuid.UUID]uuid.UUID
	merchants    map[uuid.UUID]domain.Merchant
	items        map[uuid.UUID]domain.Item
	transactions []domain.Transaction
	idempotency  map[string]domain.IdempotencyLog
	audit        []domain.AuditLog

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:        make(map[uuid.UUID]domain.User),
		wallets:      make(map[uuid.UUID]domain.Wallet),
		walletByUser: make(map[uuid.UUID]uuid.UUID),
		merchants:    make(map[uuid.UUID]domain.Merchant),
		items:        make(map[uuid.UUID]domain.Item),
		idempotency:  make(map[string]domain.IdempotencyLog),
		locks:        make(map[uuid.UUID]chan struct{}),
	}
}

func (s *Store) rowLock(walletID uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[walletID]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[walletID] = l
	}
	return l
}

// lockWallet blocks until the wallet row is free or ctx is done.
func (s *Store) lockWallet(ctx context.Context, walletID uuid.UUID) error {
	select {
	case s.rowLock(walletID) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlockWallet(walletID uuid.UUID) {
	<-s.rowLock(walletID)
}

// HealthCheck implements ports.HealthChecker for the in-memory store.
type HealthCheck struct{}

func (HealthCheck) Ping(context.Context) error { return nil }

func (HealthCheck) Name() string { return "memory" }
