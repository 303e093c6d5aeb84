package domain

import "github.com/google/uuid"

// Payout is one creator's computed share of a settled campaign budget.
type Payout struct {
	CreatorID uuid.UUID `json:"creator_id"`
	Amount    int64     `json:"amount"`
}
