package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"resonate/internal/core/domain"
)

// SettlementRepository is the outbound persistence port for the settlement
// engine. The three transition methods each run as one serializable unit of
// work that locks the campaign row, re-checks the status precondition under
// the lock, and commits the status change together with every balance
// mutation and ledger entry — or rolls the whole unit back. Concurrent
// callers on the same campaign therefore cannot both win a transition; the
// loser gets ErrInvalidState.
type SettlementRepository interface {
	// GetCampaign returns the campaign or nil when it does not exist.
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	// ListSubmissions returns all submissions belonging to a campaign.
	ListSubmissions(ctx context.Context, campaignID uuid.UUID) ([]domain.Submission, error)
	// UpdateSubmissionMetrics persists a refreshed engagement score for one
	// submission. Safe to retry; the write is idempotent per submission.
	UpdateSubmissionMetrics(ctx context.Context, submissionID uuid.UUID, score int64, refreshedAt time.Time) error

	// ApproveAndHoldBudget moves PENDING_APPROVAL -> ACTIVE and debits the
	// artist's balance by the total budget with a BUDGET_HOLD entry.
	ApproveAndHoldBudget(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error)
	// CancelAndRefund moves PENDING_APPROVAL -> CANCELLED, stores the
	// trimmed rejection reason and credits the full budget back to the
	// artist with a REFUND entry.
	CancelAndRefund(ctx context.Context, campaignID uuid.UUID, reason string) (*domain.Campaign, error)
	// CompleteAndDistribute moves ACTIVE -> COMPLETED, credits each payout
	// with a PAYOUT entry and returns the unspent remainder to the artist
	// with a REMAINDER_RETURN entry, all in the same unit of work.
	CompleteAndDistribute(ctx context.Context, campaignID uuid.UUID, payouts []domain.Payout) (*domain.Campaign, error)

	// CreateNotification stores an in-app notification. Best-effort; called
	// only after a settlement unit of work has committed.
	CreateNotification(ctx context.Context, n domain.Notification) error
}
