package dto

import (
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"

	"github.com/shopspring/decimal"
)

// ---- Users & auth ----

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Username  string `json:"username" binding:"required,min=3,max=64,safe_id"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Password  string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type"`
	Expiry    int64  `json:"expiry"` // Unix timestamp
}

// UserResponse is a user profile. The password hash is never included.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// ---- Wallets ----

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	InitialBalance *decimal.Decimal `json:"initial_balance" binding:"omitempty,money"`
}

// TopupRequest is the request body for crediting a wallet.
type TopupRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"positive_money"`
}

// WalletResponse is the response body for a wallet.
type WalletResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		UserID:    w.UserID.String(),
		Balance:   money(w.Balance),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// ReconcileResponse compares the stored balance with the ledger.
type ReconcileResponse struct {
	WalletID      string `json:"wallet_id"`
	Balance       string `json:"balance"`
	LedgerBalance string `json:"ledger_balance"`
	Consistent    bool   `json:"consistent"`
}

func NewReconcileResponse(r *ports.Reconciliation) ReconcileResponse {
	return ReconcileResponse{
		WalletID:      r.WalletID.String(),
		Balance:       money(r.Balance),
		LedgerBalance: money(r.LedgerBalance),
		Consistent:    r.Consistent,
	}
}

// ---- Transactions ----

// SettleRequest is the request body for a purchase.
type SettleRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gt=0,lte=2147483647"`
}

// TransactionResponse is a single ledger entry.
type TransactionResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ItemID    *string   `json:"item_id,omitempty"`
	WalletID  string    `json:"wallet_id"`
	Quantity  int       `json:"quantity"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:        t.ID.String(),
		Type:      string(t.Type),
		WalletID:  t.WalletID.String(),
		Quantity:  t.Quantity,
		Amount:    money(t.Amount),
		CreatedAt: t.CreatedAt,
	}
	if t.ItemID != nil {
		s := t.ItemID.String()
		resp.ItemID = &s
	}
	return resp
}

// TransactionListResponse is one page of the caller's ledger.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Page         int                   `json:"page"`
	PageCount    int                   `json:"page_count"`
	SizePerPage  int                   `json:"size_per_page"`
	Total        int64                 `json:"total"`
}

func NewTransactionListResponse(p *ports.Page[domain.Transaction]) TransactionListResponse {
	items := make([]TransactionResponse, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, NewTransactionResponse(&p.Items[i]))
	}
	return TransactionListResponse{
		Transactions: items,
		Page:         p.Page,
		PageCount:    p.TotalPages,
		SizePerPage:  p.PageSize,
		Total:        p.Total,
	}
}

// ---- Merchants & items ----

// CreateMerchantRequest is the request body for merchant creation.
type CreateMerchantRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=2000"`
}

// CreateItemRequest is the request body for item creation.
type CreateItemRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=255"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price" binding:"money"`
}

type MerchantResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewMerchantResponse(m *domain.Merchant) MerchantResponse {
	return MerchantResponse{
		ID:          m.ID.String(),
		OwnerID:     m.OwnerID.String(),
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

type ItemResponse struct {
	ID          string    `json:"id"`
	MerchantID  string    `json:"merchant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewItemResponse(it *domain.Item) ItemResponse {
	return ItemResponse{
		ID:          it.ID.String(),
		MerchantID:  it.MerchantID.String(),
		Name:        it.Name,
		Description: it.Description,
		Price:       money(it.Price),
		CreatedAt:   it.CreatedAt,
	}
}

// PageResponse is one page of a catalog listing.
type PageResponse[T any] struct {
	Items       []T   `json:"items"`
	Page        int   `json:"page"`
	PageCount   int   `json:"page_count"`
	SizePerPage int   `json:"size_per_page"`
	Total       int64 `json:"total"`
}

// NewPageResponse converts a page of domain values with conv.
func NewPageResponse[D, T any](p *ports.Page[D], conv func(*D) T) PageResponse[T] {
	items := make([]T, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, conv(&p.Items[i]))
	}
	return PageResponse[T]{
		Items:       items,
		Page:        p.Page,
		PageCount:   p.TotalPages,
		SizePerPage: p.PageSize,
		Total:       p.Total,
	}
}

// ---- Dashboard ----

// DashboardStatsResponse is the response for dashboard statistics.
type DashboardStatsResponse struct {
	Period            string `json:"period"`
	TotalTransactions int64  `json:"total_transactions"`
	Purchases         int64  `json:"purchases"`
	Topups            int64  `json:"topups"`
	TotalSpent        string `json:"total_spent"`
	TotalToppedUp     string `json:"total_topped_up"`
}

func NewDashboardStatsResponse(period string, s *ports.TransactionStats) DashboardStatsResponse {
	return DashboardStatsResponse{
		Period:            period,
		TotalTransactions: s.TotalTransactions,
		Purchases:         s.Purchases,
		Topups:            s.Topups,
		TotalSpent:        money(s.TotalSpent),
		TotalToppedUp:     money(s.TotalToppedUp),
	}
}

// money renders an amount with exactly two fractional digits.
func money(d decimal.Decimal) string {
	return d.StringFixed(domain.PriceScale)
}
