package memory

import (
	"context"
	"sort"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionRepo implements ports.TransactionRepository. Entries are
// append-only.
type TransactionRepo struct {
	store *Store
}

func NewTransactionRepo(store *Store) *TransactionRepo {
	return &TransactionRepo{store: store}
}

func (r *TransactionRepo) Create(_ context.Context, tx pgx.Tx, t *domain.Transaction) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}
	row := *t
	return mt.stage(func(s *Store) error {
		s.transactions = append(s.transactions, row)
		return nil
	})
}

func (r *TransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for i := range r.store.transactions {
		if r.store.transactions[i].ID == id {
			t := r.store.transactions[i]
			return &t, nil
		}
	}
	return nil, nil
}

// List orders by created_at DESC, id DESC like the SQL adapter.
func (r *TransactionRepo) List(_ context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	matched := r.filter(func(t *domain.Transaction) bool {
		if params.UserID != nil && t.UserID != *params.UserID {
			return false
		}
		return params.Type == nil || t.Type == *params.Type
	})

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})

	page := ports.PageRequest{Page: params.Page, PageSize: params.PageSize}
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *TransactionRepo) GetStats(_ context.Context, userID uuid.UUID, periodStart *int64) (*ports.TransactionStats, error) {
	var since time.Time
	if periodStart != nil {
		since = time.Unix(*periodStart, 0)
	}
	entries := r.filter(func(t *domain.Transaction) bool {
		return t.UserID == userID && !t.CreatedAt.Before(since)
	})

	stats := &ports.TransactionStats{TotalSpent: decimal.Zero, TotalToppedUp: decimal.Zero}
	for _, t := range entries {
		stats.TotalTransactions++
		switch t.Type {
		case domain.TransactionTypePurchase:
			stats.Purchases++
			stats.TotalSpent = stats.TotalSpent.Add(t.Amount)
		case domain.TransactionTypeTopup:
			stats.Topups++
			stats.TotalToppedUp = stats.TotalToppedUp.Add(t.Amount)
		}
	}
	return stats, nil
}

func (r *TransactionRepo) LedgerBalance(_ context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	entries := r.filter(func(t *domain.Transaction) bool { return t.WalletID == walletID })
	return domain.FoldBalance(entries), nil
}

func (r *TransactionRepo) filter(keep func(*domain.Transaction) bool) []domain.Transaction {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []domain.Transaction
	for i := range r.store.transactions {
		if keep(&r.store.transactions[i]) {
			out = append(out, r.store.transactions[i])
		}
	}
	return out
}
