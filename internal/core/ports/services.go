package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"digital-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// SettlementService executes purchases against a user's wallet.
type SettlementService interface {
	Settle(ctx context.Context, req SettleRequest) (*domain.Transaction, error)
}

// SettleRequest holds validated input for a purchase. The amount is never
// supplied by the caller; it is computed from the item price.
type SettleRequest struct {
	UserID         uuid.UUID
	ItemID         uuid.UUID
	Quantity       int
	IdempotencyKey string // optional, client supplied
}

// WalletService manages wallets and credits.
type WalletService interface {
	CreateWallet(ctx context.Context, userID uuid.UUID, initialBalance decimal.Decimal) (*domain.Wallet, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	Topup(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error)
	Reconcile(ctx context.Context, userID uuid.UUID) (*Reconciliation, error)
}

// Reconciliation compares a wallet's stored balance with the fold of its ledger.
type Reconciliation struct {
	WalletID      uuid.UUID
	Balance       decimal.Decimal
	LedgerBalance decimal.Decimal
	Consistent    bool
}

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// CatalogService manages merchants and their items.
type CatalogService interface {
	CreateMerchant(ctx context.Context, req CreateMerchantRequest) (*domain.Merchant, error)
	GetMerchant(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	ListMerchants(ctx context.Context, page PageRequest) (*Page[domain.Merchant], error)
	CreateItem(ctx context.Context, req CreateItemRequest) (*domain.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListItems(ctx context.Context, merchantID uuid.UUID, page PageRequest) (*Page[domain.Item], error)
}

// CreateMerchantRequest holds input for merchant creation.
type CreateMerchantRequest struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
}

// CreateItemRequest holds input for item creation. Only the merchant owner may add items.
type CreateItemRequest struct {
	UserID      uuid.UUID
	MerchantID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
}

// QueryService provides read access to the ledger.
type QueryService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) (*Page[domain.Transaction], error)
	GetTransaction(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*domain.Transaction, error)
	GetDashboardStats(ctx context.Context, userID uuid.UUID, period string) (*TransactionStats, error)
}

// AuditService records audit entries for write operations.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
