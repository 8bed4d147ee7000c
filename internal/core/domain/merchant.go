package domain

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is a seller that lists items. Owned by the user who created it.
type Merchant struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsOwnedBy returns true if userID created the merchant.
func (m *Merchant) IsOwnedBy(userID uuid.UUID) bool {
	return m.OwnerID == userID
}
