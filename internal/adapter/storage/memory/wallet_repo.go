package memory

import (
	"context"
	"fmt"
	"time"

	"digital-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	store *Store
}

func NewWalletRepo(store *Store) *WalletRepo {
	return &WalletRepo{store: store}
}

func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	_, exists := r.store.walletByUser[w.UserID]
	r.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("insert wallet: %w", domain.ErrDuplicateKey)
	}

	row := *w
	return mt.stage(func(s *Store) error {
		if _, ok := s.walletByUser[row.UserID]; ok {
			return fmt.Errorf("insert wallet: %w", domain.ErrDuplicateKey)
		}
		s.wallets[row.ID] = row
		s.walletByUser[row.UserID] = row.ID
		return nil
	})
}

func (r *WalletRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.walletByUser[userID]
	if !ok {
		return nil, nil
	}
	w := r.store.wallets[id]
	return &w, nil
}

// GetByUserIDForUpdate takes the wallet's row lock for the lifetime of tx.
// A caller deadline while waiting surfaces as the context error.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	mt, err := asMemTx(tx)
	if err != nil {
		return nil, err
	}

	w, err := r.GetByUserID(ctx, userID)
	if err != nil || w == nil {
		return nil, err
	}

	if !mt.holds(w.ID) {
		if err := r.store.lockWallet(ctx, w.ID); err != nil {
			return nil, fmt.Errorf("get wallet for update: %w", err)
		}
		mt.locked = append(mt.locked, w.ID)
	}

	// Re-read under the lock: the previous holder may have committed.
	return r.GetByUserID(ctx, userID)
}

func (r *WalletRepo) UpdateBalance(_ context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}
	if balance.IsNegative() {
		return fmt.Errorf("update wallet balance: balance would be negative")
	}

	now := time.Now().UTC()
	return mt.stage(func(s *Store) error {
		w, ok := s.wallets[walletID]
		if !ok {
			return fmt.Errorf("wallet not found: %s", walletID)
		}
		w.Balance = balance
		w.UpdatedAt = now
		s.wallets[walletID] = w
		return nil
	})
}
