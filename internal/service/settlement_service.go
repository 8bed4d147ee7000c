package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// SettlementServiceImpl implements ports.SettlementService.
type SettlementServiceImpl struct {
	txRepo     ports.TransactionRepository
	walletRepo ports.WalletRepository
	itemRepo   ports.ItemRepository
	idempRepo  ports.IdempotencyRepository
	idempCache ports.IdempotencyCache // nil = no Redis fast path
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	itemRepo ports.ItemRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		txRepo:     txRepo,
		walletRepo: walletRepo,
		itemRepo:   itemRepo,
		idempRepo:  idempRepo,
		idempCache: idempCache,
		transactor: transactor,
		log:        log,
	}
}

// Settle debits the caller's wallet for quantity units of an item and appends
// a PURCHASE entry. The debit and the entry commit together or not at all.
// The engine never retries; a Conflict is returned to the caller.
func (s *SettlementServiceImpl) Settle(ctx context.Context, req ports.SettleRequest) (*domain.Transaction, error) {
	start := time.Now()
	txn, err := s.settle(ctx, req)
	observeLedgerOperation(opSettle, time.Since(start).Seconds(), err)

	if err != nil {
		ev := s.log.Warn()
		if isServerError(err) {
			ev = s.log.Error()
		}
		ev.Err(err).
			Str("user_id", req.UserID.String()).
			Str("item_id", req.ItemID.String()).
			Int("quantity", req.Quantity).
			Msg("settlement rejected")
		return nil, err
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("wallet_id", txn.WalletID.String()).
		Str("amount", txn.Amount.StringFixed(domain.PriceScale)).
		Msg("settlement committed")
	return txn, nil
}

func (s *SettlementServiceImpl) settle(ctx context.Context, req ports.SettleRequest) (*domain.Transaction, error) {
	if !domain.IsValidQuantity(req.Quantity) {
		return nil, apperror.InvalidArgument(fmt.Sprintf("quantity must be between 1 and %d", domain.MaxQuantity))
	}

	var idempKey string
	if req.IdempotencyKey != "" {
		idempKey = domain.BuildIdempotencyKey(req.UserID, req.IdempotencyKey)

		// Layer 1: Redis idempotency check
		if cached := s.cachedResponse(ctx, idempKey); cached != nil {
			return unmarshalTransaction(cached)
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError("begin tx", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get wallet. Concurrent settlements on the same wallet queue here.
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, storeError("lock wallet", err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	// Layer 2: DB idempotency check, under the wallet lock so a concurrent
	// replay sees the first request's committed log.
	if idempKey != "" {
		idempLog, err := s.idempRepo.Get(ctx, idempKey)
		if err != nil {
			return nil, storeError("db idempotency check", err)
		}
		if idempLog != nil {
			return unmarshalTransaction(idempLog.ResponseJSON)
		}
	}

	item, err := s.itemRepo.GetByIDTx(ctx, dbTx, req.ItemID)
	if err != nil {
		return nil, storeError("get item", err)
	}
	if item == nil {
		return nil, apperror.ErrItemNotFound()
	}

	// Cost always comes from the current price, never from the client.
	cost := item.Cost(req.Quantity)
	if !wallet.CanDebit(cost) {
		return nil, apperror.ErrInsufficientFunds()
	}

	now := time.Now().UTC()
	itemID := item.ID
	txn := &domain.Transaction{
		ID:        uuid.New(),
		Type:      domain.TransactionTypePurchase,
		UserID:    req.UserID,
		ItemID:    &itemID,
		WalletID:  wallet.ID,
		Quantity:  req.Quantity,
		Amount:    cost,
		CreatedAt: now,
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance.Sub(cost)); err != nil {
		return nil, storeError("update balance", err)
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, storeError("create transaction", err)
	}

	var respJSON []byte
	if idempKey != "" {
		respJSON, err = json.Marshal(txn)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
		}
		err = s.idempRepo.Create(ctx, dbTx, &domain.IdempotencyLog{
			Key:           idempKey,
			TransactionID: txn.ID,
			ResponseJSON:  respJSON,
			CreatedAt:     now,
		})
		if errors.Is(err, domain.ErrDuplicateKey) {
			return s.replayAfterDuplicate(ctx, dbTx, idempKey)
		}
		if err != nil {
			return nil, storeError("save idempotency log", err)
		}
	}

	// A caller deadline must abort before commit, never after it.
	if err := ctx.Err(); err != nil {
		return nil, apperror.ErrTimeout(fmt.Errorf("before commit: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, commitError(err)
	}

	// Post-process: cache in Redis (best-effort)
	if idempKey != "" && s.idempCache != nil {
		if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
		}
	}

	return txn, nil
}

// replayAfterDuplicate discards the unit of work and returns the transaction
// recorded by whichever request won the idempotency key.
func (s *SettlementServiceImpl) replayAfterDuplicate(ctx context.Context, dbTx pgx.Tx, key string) (*domain.Transaction, error) {
	if err := dbTx.Rollback(ctx); err != nil {
		s.log.Debug().Err(err).Msg("rollback after duplicate idempotency key")
	}
	idempLog, err := s.idempRepo.Get(ctx, key)
	if err != nil {
		return nil, storeError("db idempotency re-read", err)
	}
	if idempLog == nil {
		return nil, apperror.ErrConflict(fmt.Errorf("idempotency key %s vanished", key))
	}
	return unmarshalTransaction(idempLog.ResponseJSON)
}

func (s *SettlementServiceImpl) cachedResponse(ctx context.Context, key string) []byte {
	if s.idempCache == nil {
		return nil
	}
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
		return nil
	}
	return cached
}

func unmarshalTransaction(data []byte) (*domain.Transaction, error) {
	var txn domain.Transaction
	if err := json.Unmarshal(data, &txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached transaction: %w", err))
	}
	return &txn, nil
}
