package port

import (
	"context"

	"github.com/google/uuid"

	"resonate/internal/core/domain"
)

// SettlementUseCase drives a campaign through its financial lifecycle. This
// is the primary inbound port of the engine.
type SettlementUseCase interface {
	// Approve activates a pending campaign and holds its budget from the
	// artist's balance. Admin only.
	Approve(ctx context.Context, campaignID uuid.UUID, actor domain.Actor) error

	// Reject cancels a pending campaign with the given reason and refunds
	// the held budget to the artist. Admin only. Rejecting a campaign that
	// already left PENDING_APPROVAL fails with ErrInvalidState.
	Reject(ctx context.Context, campaignID uuid.UUID, actor domain.Actor, reason string) error

	// Finish settles an active campaign: refreshes engagement metrics for
	// every submission, computes proportional payouts and distributes them
	// atomically. Admin only. A repeat call after a successful settlement
	// fails with ErrInvalidState and pays nothing.
	Finish(ctx context.Context, campaignID uuid.UUID, actor domain.Actor) (*SettlementReport, error)

	// GetCampaign returns a campaign for inspection. Admin only.
	GetCampaign(ctx context.Context, campaignID uuid.UUID, actor domain.Actor) (*domain.Campaign, error)
}

// MetricsRefreshReport counts per-submission refresh outcomes of the first
// settlement phase. Failed items keep their previous score.
type MetricsRefreshReport struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// SettlementReport is the caller-facing result of Finish.
type SettlementReport struct {
	MetricsRefresh MetricsRefreshReport `json:"metrics_refresh"`
	Payouts        []domain.Payout      `json:"payouts"`
}
