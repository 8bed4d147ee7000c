package postgres

import (
	"context"
	"errors"
	"testing"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txColumns() []string {
	return []string{"id", "type", "user_id", "item_id", "wallet_id", "quantity", "amount", "created_at"}
}

func newTestPurchase() *domain.Transaction {
	itemID := uuid.New()
	return &domain.Transaction{
		ID:        uuid.New(),
		Type:      domain.TransactionTypePurchase,
		UserID:    uuid.New(),
		ItemID:    &itemID,
		WalletID:  uuid.New(),
		Quantity:  2,
		Amount:    decimal.RequireFromString("60.00"),
		CreatedAt: testTime(),
	}
}

func txRow(rows *pgxmock.Rows, t *domain.Transaction) *pgxmock.Rows {
	return rows.AddRow(t.ID, t.Type, t.UserID, t.ItemID, t.WalletID, t.Quantity, t.Amount, t.CreatedAt)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	txn := newTestPurchase()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.Type, txn.UserID, txn.ItemID, txn.WalletID, 2, decimalEq("60"), txn.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Create(context.Background(), tx, txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_QueryCanceled(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	txn := newTestPurchase()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnError(pgErr("57014"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	txn := newTestPurchase()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id = \\$1").
		WithArgs(txn.ID).
		WillReturnRows(txRow(pgxmock.NewRows(txColumns()), txn))

	got, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.TransactionTypePurchase, got.Type)
	require.NotNil(t, got.ItemID)
	assert.Equal(t, *txn.ItemID, *got.ItemID)
	assert.True(t, got.Amount.Equal(txn.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(txColumns()))

	got, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransactionRepo_List_Unfiltered(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	a, b := newTestPurchase(), newTestPurchase()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM transactions\\s*$").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(120)))
	mock.ExpectQuery("ORDER BY created_at DESC, id DESC LIMIT \\$1 OFFSET \\$2").
		WithArgs(50, 100).
		WillReturnRows(txRow(txRow(pgxmock.NewRows(txColumns()), a), b))

	txns, total, err := repo.List(context.Background(), ports.TransactionListParams{Page: 3, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(120), total)
	assert.Len(t, txns, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List_ByUserAndType(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	userID := uuid.New()
	txType := domain.TransactionTypeTopup

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM transactions WHERE user_id = \\$1 AND type = \\$2").
		WithArgs(userID, txType).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("WHERE user_id = \\$1 AND type = \\$2\\s+ORDER BY created_at DESC, id DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs(userID, txType, 10, 0).
		WillReturnRows(pgxmock.NewRows(txColumns()))

	txns, total, err := repo.List(context.Background(), ports.TransactionListParams{
		UserID: &userID, Type: &txType, Page: 1, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, txns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetStats(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	userID := uuid.New()
	since := int64(1_700_000_000)

	mock.ExpectQuery("FILTER \\(WHERE type = 'PURCHASE'\\)").
		WithArgs(userID, since).
		WillReturnRows(pgxmock.NewRows([]string{"total", "purchases", "topups", "spent", "topped_up"}).
			AddRow(int64(3), int64(2), int64(1), decimal.RequireFromString("90.00"), decimal.RequireFromString("100.00")))

	stats, err := repo.GetStats(context.Background(), userID, &since)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalTransactions)
	assert.Equal(t, int64(2), stats.Purchases)
	assert.Equal(t, int64(1), stats.Topups)
	assert.Equal(t, "90.00", stats.TotalSpent.StringFixed(2))
	assert.Equal(t, "100.00", stats.TotalToppedUp.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_LedgerBalance(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTransactionRepo(mock)
	walletID := uuid.New()

	mock.ExpectQuery("SUM\\(CASE WHEN type = 'TOPUP' THEN amount ELSE -amount END\\)").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(decimal.RequireFromString("40.00")))

	balance, err := repo.LedgerBalance(context.Background(), walletID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", balance.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
