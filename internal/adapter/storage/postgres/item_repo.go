package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, merchant_id, name, description, price, created_at`

// ItemRepo implements ports.ItemRepository.
type ItemRepo struct {
	pool Pool
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(pool Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

// Create inserts a new item.
func (r *ItemRepo) Create(ctx context.Context, item *domain.Item) error {
	query := `INSERT INTO items (` + itemColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.MerchantID, item.Name, item.Description, item.Price, item.CreatedAt,
	)
	return classify("insert item", err)
}

// GetByID fetches an item by UUID.
func (r *ItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItem(r.pool.QueryRow(ctx, query, id))
}

// GetByIDTx fetches an item inside a settlement transaction. The price read
// here is the snapshot charged to the wallet.
func (r *ItemRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItem(tx.QueryRow(ctx, query, id))
}

// ListByMerchant returns one page of a merchant's items and the total count.
func (r *ItemRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, page ports.PageRequest) ([]domain.Item, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE merchant_id = $1`, merchantID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE merchant_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, merchantID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.MerchantID, &it.Name, &it.Description, &it.Price, &it.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate item rows: %w", err)
	}
	return items, total, nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	it := &domain.Item{}
	err := row.Scan(&it.ID, &it.MerchantID, &it.Name, &it.Description, &it.Price, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get item", err)
	}
	return it, nil
}
