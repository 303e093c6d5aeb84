package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	// TransactionBudgetHold debits an artist when a campaign is approved.
	TransactionBudgetHold TransactionType = "BUDGET_HOLD"
	// TransactionRefund credits an artist the full budget on rejection.
	TransactionRefund TransactionType = "REFUND"
	// TransactionPayout credits a creator their share on settlement.
	TransactionPayout TransactionType = "PAYOUT"
	// TransactionRemainderReturn credits an artist the unspent budget on
	// settlement.
	TransactionRemainderReturn TransactionType = "REMAINDER_RETURN"
)

// TransactionStatus is the state of a ledger entry. Entries are written
// already-completed inside the unit of work that moves the money.
type TransactionStatus string

const TransactionCompleted TransactionStatus = "COMPLETED"

// Transaction is an immutable, append-only ledger record. A user's balance is
// always reconstructible as the sum of their transaction amounts; no balance
// mutation happens without a corresponding transaction row.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Amount      int64 // signed, minor units
	Type        TransactionType
	Status      TransactionStatus
	Description string
	CreatedAt   time.Time
}
