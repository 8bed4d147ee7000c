package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits allowed in prices and amounts.
const PriceScale = 2

// MaxQuantity is the largest quantity a ledger entry can hold (INTEGER column).
const MaxQuantity = math.MaxInt32

// MaxMoney is the largest value a NUMERIC(20,2) column holds. It bounds
// prices, amounts and wallet balances.
var MaxMoney = decimal.RequireFromString("999999999999999999.99")

// Item is a purchasable product of a merchant.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	MerchantID  uuid.UUID       `json:"merchant_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Cost returns price * quantity.
func (i *Item) Cost(quantity int) decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

// IsValidMoney reports whether d is non-negative, at most MaxMoney and has
// at most PriceScale decimals.
func IsValidMoney(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(MaxMoney) && d.Equal(d.Truncate(PriceScale))
}

// IsValidQuantity reports whether q is in 1..MaxQuantity.
func IsValidQuantity(q int) bool {
	return q >= 1 && q <= MaxQuantity
}
