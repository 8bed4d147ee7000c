package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "PURCHASE"
	TransactionTypeTopup    TransactionType = "TOPUP"
)

// Transaction is an immutable ledger entry. PURCHASE entries debit the wallet
// and reference an item; TOPUP entries credit it and carry no item.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	Type      TransactionType `json:"type"`
	UserID    uuid.UUID       `json:"user_id"`
	ItemID    *uuid.UUID      `json:"item_id,omitempty"`
	WalletID  uuid.UUID       `json:"wallet_id"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"` // Snapshotted at execution time
	CreatedAt time.Time       `json:"created_at"`
}

// IsDebit returns true if the entry reduced the wallet balance.
func (t *Transaction) IsDebit() bool {
	return t.Type == TransactionTypePurchase
}

// SignedAmount returns the entry's effect on the wallet balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// FoldBalance replays ledger entries into a balance.
func FoldBalance(entries []Transaction) decimal.Decimal {
	balance := decimal.Zero
	for i := range entries {
		balance = balance.Add(entries[i].SignedAmount())
	}
	return balance
}
