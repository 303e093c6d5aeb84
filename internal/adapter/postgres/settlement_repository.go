package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resonate/internal/core/domain"
	"resonate/internal/core/port"
)

// SettlementRepository implements port.SettlementRepository using pgxpool.
// Every state transition runs as one serializable transaction that locks the
// campaign row before re-checking its status, so concurrent settlement
// attempts on the same campaign serialize and exactly one wins.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository returns a new repository instance.
func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

const campaignColumns = `id, artist_id, title, status, total_budget, rejection_reason, created_at, updated_at`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(&c.ID, &c.ArtistID, &c.Title, &c.Status, &c.TotalBudget, &c.RejectionReason, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCampaign returns a campaign by id, or nil when it does not exist.
func (r *SettlementRepository) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1`, campaignColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListSubmissions returns all submissions of a campaign.
func (r *SettlementRepository) ListSubmissions(ctx context.Context, campaignID uuid.UUID) ([]domain.Submission, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, campaign_id, creator_id, content_url, engagement_score,
               disqualified, metrics_refreshed_at, created_at, updated_at
        FROM submissions
        WHERE campaign_id = $1
        ORDER BY created_at, id`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Submission, error) {
		var s domain.Submission
		err := row.Scan(&s.ID, &s.CampaignID, &s.CreatorID, &s.ContentURL, &s.EngagementScore,
			&s.Disqualified, &s.MetricsRefreshedAt, &s.CreatedAt, &s.UpdatedAt)
		return s, err
	})
}

// UpdateSubmissionMetrics persists a refreshed engagement score. The join on
// the owning campaign keeps submissions of terminal campaigns immutable.
// Re-running the same update is harmless, which makes the refresh phase
// retryable per submission.
func (r *SettlementRepository) UpdateSubmissionMetrics(ctx context.Context, submissionID uuid.UUID, score int64, refreshedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE submissions s
        SET engagement_score = $1, metrics_refreshed_at = $2, updated_at = now()
        FROM campaigns c
        WHERE s.id = $3 AND c.id = s.campaign_id
          AND c.status IN ($4, $5)`,
		score, refreshedAt, submissionID, domain.CampaignPendingApproval, domain.CampaignActive)
	return err
}

// applyLedgerEntry is the ledger primitive: it appends a transaction record
// and adjusts the user's balance by the same signed amount inside the
// caller's transaction. A balance never changes through any other path, so
// it stays reconstructible as the sum of the user's transactions. Negative
// balances are not rejected here; domain rules upstream decide whether a
// hold may overdraw.
func applyLedgerEntry(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, entryType domain.TransactionType, description string) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO transactions (id, user_id, amount, type, status, description, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, now())`,
		uuid.New(), userID, amount, entryType, domain.TransactionCompleted, description)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	tag, err := tx.Exec(ctx, `UPDATE users SET balance = balance + $1 WHERE id = $2`, amount, userID)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("adjust balance: user %s not found", userID)
	}
	return nil
}

// lockCampaign loads the campaign row under FOR UPDATE within tx.
func lockCampaign(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Campaign, error) {
	c, err := scanCampaign(tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1 FOR UPDATE`, campaignColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// inTx runs fn inside one serializable transaction. A commit failure is
// returned to the caller, never masked: if the commit did not happen, no
// side effect persisted and the operation is safe to retry.
func (r *SettlementRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	err = fn(tx)
	return err
}

// ApproveAndHoldBudget activates a pending campaign and debits its budget
// from the artist's balance with a BUDGET_HOLD ledger entry.
func (r *SettlementRepository) ApproveAndHoldBudget(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error) {
	var c *domain.Campaign
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		c, err = lockCampaign(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		if c.Status != domain.CampaignPendingApproval {
			return port.ErrInvalidState
		}
		if _, err = tx.Exec(ctx, `UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2`,
			domain.CampaignActive, campaignID); err != nil {
			return err
		}
		if err = applyLedgerEntry(ctx, tx, c.ArtistID, -c.TotalBudget, domain.TransactionBudgetHold,
			fmt.Sprintf("Budget hold for campaign %q", c.Title)); err != nil {
			return err
		}
		c.Status = domain.CampaignActive
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CancelAndRefund cancels a pending campaign, records the rejection reason
// and credits the full budget back to the artist with a REFUND ledger entry.
// All three writes commit together or not at all.
func (r *SettlementRepository) CancelAndRefund(ctx context.Context, campaignID uuid.UUID, reason string) (*domain.Campaign, error) {
	var c *domain.Campaign
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		c, err = lockCampaign(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		if c.Status != domain.CampaignPendingApproval {
			return port.ErrInvalidState
		}
		if _, err = tx.Exec(ctx, `UPDATE campaigns SET status = $1, rejection_reason = $2, updated_at = now() WHERE id = $3`,
			domain.CampaignCancelled, reason, campaignID); err != nil {
			return err
		}
		if err = applyLedgerEntry(ctx, tx, c.ArtistID, c.TotalBudget, domain.TransactionRefund,
			fmt.Sprintf("Refund for rejected campaign %q: %s", c.Title, reason)); err != nil {
			return err
		}
		c.Status = domain.CampaignCancelled
		c.RejectionReason = &reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CompleteAndDistribute settles an active campaign: one PAYOUT ledger entry
// per creator, the unspent remainder back to the artist, and the transition
// to COMPLETED as the last write of the unit of work. Budget conservation
// holds by construction: payouts plus remainder always equal the total
// budget, and a payout sum above the budget is refused outright.
func (r *SettlementRepository) CompleteAndDistribute(ctx context.Context, campaignID uuid.UUID, payouts []domain.Payout) (*domain.Campaign, error) {
	var c *domain.Campaign
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		c, err = lockCampaign(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		if c.Status != domain.CampaignActive {
			return port.ErrInvalidState
		}
		remainder := c.TotalBudget
		for _, p := range payouts {
			remainder -= p.Amount
		}
		if remainder < 0 {
			return fmt.Errorf("payouts exceed campaign budget by %d", -remainder)
		}
		for _, p := range payouts {
			if err = applyLedgerEntry(ctx, tx, p.CreatorID, p.Amount, domain.TransactionPayout,
				fmt.Sprintf("Payout for campaign %q", c.Title)); err != nil {
				return err
			}
		}
		if remainder > 0 {
			if err = applyLedgerEntry(ctx, tx, c.ArtistID, remainder, domain.TransactionRemainderReturn,
				fmt.Sprintf("Unspent budget returned for campaign %q", c.Title)); err != nil {
				return err
			}
		}
		if _, err = tx.Exec(ctx, `UPDATE campaigns SET status = $1, updated_at = now() WHERE id = $2`,
			domain.CampaignCompleted, campaignID); err != nil {
			return err
		}
		c.Status = domain.CampaignCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateNotification stores an in-app notification row.
func (r *SettlementRepository) CreateNotification(ctx context.Context, n domain.Notification) error {
	id := n.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
        INSERT INTO notifications (id, user_id, title, message, link, created_at)
        VALUES ($1, $2, $3, $4, $5, now())`,
		id, n.UserID, n.Title, n.Message, n.Link)
	return err
}
