package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyLog stores the result of a settlement so a replayed request
// returns the original transaction instead of debiting twice.
type IdempotencyLog struct {
	Key           string    `json:"key"` // Format: "user_id:client_key"
	TransactionID uuid.UUID `json:"transaction_id"`
	ResponseJSON  []byte    `json:"response_json"`
	CreatedAt     time.Time `json:"created_at"`
}

// BuildIdempotencyKey scopes a client-supplied key to the user.
func BuildIdempotencyKey(userID uuid.UUID, clientKey string) string {
	return userID.String() + ":" + clientKey
}
