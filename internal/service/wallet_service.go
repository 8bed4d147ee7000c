package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		transactor: transactor,
		log:        log,
	}
}

// CreateWallet opens the user's single wallet. A positive initial balance is
// recorded as a TOPUP entry in the same unit so the balance stays a ledger fold.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, userID uuid.UUID, initialBalance decimal.Decimal) (*domain.Wallet, error) {
	start := time.Now()
	wallet, err := s.createWallet(ctx, userID, initialBalance)
	observeLedgerOperation(opCreate, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("user_id", userID.String()).
		Str("initial_balance", initialBalance.StringFixed(domain.PriceScale)).
		Msg("wallet created")
	return wallet, nil
}

func (s *WalletServiceImpl) createWallet(ctx context.Context, userID uuid.UUID, initialBalance decimal.Decimal) (*domain.Wallet, error) {
	if !domain.IsValidMoney(initialBalance) {
		return nil, apperror.ErrInvalidAmount()
	}

	existing, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError("check wallet", err)
	}
	if existing != nil {
		return nil, apperror.ErrWalletExists()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   initialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.Create(ctx, dbTx, wallet); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, apperror.ErrWalletExists()
		}
		return nil, storeError("create wallet", err)
	}

	if initialBalance.IsPositive() {
		entry := newTopupEntry(userID, wallet.ID, initialBalance, now)
		if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
			return nil, storeError("record initial balance", err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, commitError(err)
	}
	return wallet, nil
}

// GetWallet returns the caller's wallet.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError("get wallet", err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return wallet, nil
}

// Topup credits the caller's wallet and appends a TOPUP entry.
func (s *WalletServiceImpl) Topup(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	start := time.Now()
	txn, err := s.topup(ctx, userID, amount)
	observeLedgerOperation(opTopup, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("user_id", userID.String()).
		Str("amount", amount.StringFixed(domain.PriceScale)).
		Msg("topup processed successfully")
	return txn, nil
}

func (s *WalletServiceImpl) topup(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() || !domain.IsValidMoney(amount) {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, storeError("lock wallet", err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if !wallet.CanCredit(amount) {
		return nil, apperror.InvalidArgument("top-up would exceed the maximum wallet balance")
	}

	txn := newTopupEntry(userID, wallet.ID, amount, time.Now().UTC())

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance.Add(amount)); err != nil {
		return nil, storeError("update balance", err)
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeError("create transaction", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, apperror.ErrTimeout(fmt.Errorf("before commit: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, commitError(err)
	}
	return txn, nil
}

// Reconcile compares the stored balance with the fold of the wallet's entries.
func (s *WalletServiceImpl) Reconcile(ctx context.Context, userID uuid.UUID) (*ports.Reconciliation, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	ledger, err := s.txRepo.LedgerBalance(ctx, wallet.ID)
	if err != nil {
		return nil, storeError("ledger balance", err)
	}

	rec := &ports.Reconciliation{
		WalletID:      wallet.ID,
		Balance:       wallet.Balance,
		LedgerBalance: ledger,
		Consistent:    wallet.Balance.Equal(ledger),
	}
	if !rec.Consistent {
		s.log.Error().
			Str("wallet_id", wallet.ID.String()).
			Str("balance", wallet.Balance.String()).
			Str("ledger", ledger.String()).
			Msg("wallet balance diverges from ledger")
	}
	return rec, nil
}

func newTopupEntry(userID, walletID uuid.UUID, amount decimal.Decimal, at time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:        uuid.New(),
		Type:      domain.TransactionTypeTopup,
		UserID:    userID,
		WalletID:  walletID,
		Quantity:  1,
		Amount:    amount,
		CreatedAt: at,
	}
}
