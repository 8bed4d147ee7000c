package service

import (
	"context"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"

	"github.com/google/uuid"
)

// queryService implements ports.QueryService.
type queryService struct {
	txRepo ports.TransactionRepository
}

// NewQueryService creates a new ledger query service.
func NewQueryService(txRepo ports.TransactionRepository) ports.QueryService {
	return &queryService{txRepo: txRepo}
}

// ListTransactions returns one page of ledger entries, newest first.
func (s *queryService) ListTransactions(ctx context.Context, params ports.TransactionListParams) (*ports.Page[domain.Transaction], error) {
	req := ports.PageRequest{Page: params.Page, PageSize: params.PageSize}
	if !req.Valid() {
		return nil, apperror.InvalidArgument("page and page size must be at least 1")
	}

	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, storeError("list transactions", err)
	}
	return ports.NewPage(txns, req, total), nil
}

// GetTransaction returns a single entry. When userID is set, entries owned by
// other users are reported as not found.
func (s *queryService) GetTransaction(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get transaction", err)
	}
	if txn == nil || (userID != nil && txn.UserID != *userID) {
		return nil, apperror.ErrTransactionNotFound()
	}
	return txn, nil
}

// GetDashboardStats returns aggregated transaction stats for the user.
func (s *queryService) GetDashboardStats(ctx context.Context, userID uuid.UUID, period string) (*ports.TransactionStats, error) {
	var periodStart *int64

	switch period {
	case "day":
		t := time.Now().AddDate(0, 0, -1).Unix()
		periodStart = &t
	case "week":
		t := time.Now().AddDate(0, 0, -7).Unix()
		periodStart = &t
	case "month":
		t := time.Now().AddDate(0, -1, 0).Unix()
		periodStart = &t
	case "all", "":
		// No time filter
	default:
		return nil, apperror.InvalidArgument("invalid period: must be day, week, month, or all")
	}

	stats, err := s.txRepo.GetStats(ctx, userID, periodStart)
	if err != nil {
		return nil, storeError("transaction stats", err)
	}
	return stats, nil
}
