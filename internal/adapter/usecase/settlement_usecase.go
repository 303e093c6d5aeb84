package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resonate/internal/core/domain"
	"resonate/internal/core/payout"
	"resonate/internal/core/port"
)

// defaultRefreshParallelism bounds concurrent calls to the metrics provider
// during the refresh phase.
const defaultRefreshParallelism = 4

// SettlementUseCase orchestrates the financial lifecycle of a campaign. It
// implements port.SettlementUseCase on top of the repository, the external
// metrics provider and any number of notification sinks.
type SettlementUseCase struct {
	repo      port.SettlementRepository
	metrics   port.MetricsProvider
	notifiers []port.Notifier
	logger    *slog.Logger

	refreshParallelism int
}

// NewSettlementUseCase creates the orchestrator. Notifiers are optional and
// strictly best-effort.
func NewSettlementUseCase(repo port.SettlementRepository, metrics port.MetricsProvider, logger *slog.Logger, notifiers ...port.Notifier) *SettlementUseCase {
	return &SettlementUseCase{
		repo:               repo,
		metrics:            metrics,
		notifiers:          notifiers,
		logger:             logger,
		refreshParallelism: defaultRefreshParallelism,
	}
}

// loadCampaign resolves the campaign and checks the expected status. The
// check here is a fast path for a clean error before any work starts; the
// repository re-checks it under a row lock inside the unit of work, which is
// what actually decides races.
func (u *SettlementUseCase) loadCampaign(ctx context.Context, id uuid.UUID, want domain.CampaignStatus) (*domain.Campaign, error) {
	c, err := u.repo.GetCampaign(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	if c == nil {
		return nil, port.ErrNotFound
	}
	if c.Status != want {
		return nil, port.ErrInvalidState
	}
	return c, nil
}

// Approve activates a pending campaign and holds its budget from the
// artist's spendable balance.
func (u *SettlementUseCase) Approve(ctx context.Context, campaignID uuid.UUID, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return port.ErrUnauthorized
	}
	if _, err := u.loadCampaign(ctx, campaignID, domain.CampaignPendingApproval); err != nil {
		return err
	}
	c, err := u.repo.ApproveAndHoldBudget(ctx, campaignID)
	if err != nil {
		return err
	}
	u.notify(ctx, c.ArtistID, "Campaign approved",
		fmt.Sprintf("Your campaign %q is now live. %d was held from your balance.", c.Title, c.TotalBudget),
		fmt.Sprintf("/campaigns/%s", c.ID))
	return nil
}

// Reject cancels a pending campaign and refunds the full budget to the
// artist. The cancel, refund and ledger entry commit atomically in the
// repository; the notification runs only after that commit.
func (u *SettlementUseCase) Reject(ctx context.Context, campaignID uuid.UUID, actor domain.Actor, reason string) error {
	if !actor.IsAdmin() {
		return port.ErrUnauthorized
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: rejection reason must not be empty", port.ErrInvalidInput)
	}
	if _, err := u.loadCampaign(ctx, campaignID, domain.CampaignPendingApproval); err != nil {
		return err
	}
	c, err := u.repo.CancelAndRefund(ctx, campaignID, reason)
	if err != nil {
		return err
	}
	u.notify(ctx, c.ArtistID, "Campaign rejected",
		fmt.Sprintf("Your campaign %q was rejected: %s. Your budget of %d was refunded.", c.Title, reason, c.TotalBudget),
		fmt.Sprintf("/campaigns/%s", c.ID))
	return nil
}

// Finish settles an active campaign in two phases: a fallible, bounded-
// parallel metrics refresh across all submissions, then one atomic
// distribution of the budget. Re-invoking Finish after a successful
// settlement fails with ErrInvalidState because the campaign is no longer
// ACTIVE — the repository enforces that under a row lock, so a crash between
// the phases or a concurrent call can never pay twice.
func (u *SettlementUseCase) Finish(ctx context.Context, campaignID uuid.UUID, actor domain.Actor) (*port.SettlementReport, error) {
	if !actor.IsAdmin() {
		return nil, port.ErrUnauthorized
	}
	c, err := u.loadCampaign(ctx, campaignID, domain.CampaignActive)
	if err != nil {
		return nil, err
	}

	subs, err := u.repo.ListSubmissions(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	refresh := u.refreshMetrics(ctx, subs)

	entries := make([]payout.Entry, 0, len(subs))
	for _, s := range subs {
		entries = append(entries, payout.Entry{
			CreatorID:    s.CreatorID,
			Score:        s.EngagementScore,
			Disqualified: s.Disqualified,
		})
	}
	payouts := payout.Compute(entries, c.TotalBudget)

	c, err = u.repo.CompleteAndDistribute(ctx, campaignID, payouts)
	if err != nil {
		return nil, err
	}

	remainder := payout.Remainder(c.TotalBudget, payouts)
	u.notify(ctx, c.ArtistID, "Campaign completed",
		fmt.Sprintf("Your campaign %q finished. %d was paid out to creators, %d returned to your balance.",
			c.Title, c.TotalBudget-remainder, remainder),
		fmt.Sprintf("/campaigns/%s", c.ID))
	for _, p := range payouts {
		u.notify(ctx, p.CreatorID, "Payout received",
			fmt.Sprintf("You earned %d from campaign %q.", p.Amount, c.Title),
			fmt.Sprintf("/campaigns/%s", c.ID))
	}

	return &port.SettlementReport{MetricsRefresh: refresh, Payouts: payouts}, nil
}

// refreshMetrics fetches the latest engagement snapshot for every submission
// and persists it. One submission failing must not stop the others; failed
// items keep their previously stored score and are only counted. The subs
// slice is updated in place so the payout phase sees the fresh scores.
func (u *SettlementUseCase) refreshMetrics(ctx context.Context, subs []domain.Submission) port.MetricsRefreshReport {
	var (
		mu     sync.Mutex
		report port.MetricsRefreshReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.refreshParallelism)
	for i := range subs {
		sub := &subs[i]
		g.Go(func() error {
			snapshot, err := u.metrics.FetchLatestMetrics(gctx, sub.ID)
			if err != nil {
				u.logger.Warn("metrics refresh failed",
					slog.String("submission_id", sub.ID.String()), slog.Any("error", err))
				mu.Lock()
				report.Failed++
				mu.Unlock()
				return nil
			}
			score := snapshot.Score()
			if err = u.repo.UpdateSubmissionMetrics(gctx, sub.ID, score, time.Now().UTC()); err != nil {
				u.logger.Warn("metrics persist failed",
					slog.String("submission_id", sub.ID.String()), slog.Any("error", err))
				mu.Lock()
				report.Failed++
				mu.Unlock()
				return nil
			}
			sub.EngagementScore = score
			mu.Lock()
			report.Updated++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// GetCampaign returns a campaign for inspection.
func (u *SettlementUseCase) GetCampaign(ctx context.Context, campaignID uuid.UUID, actor domain.Actor) (*domain.Campaign, error) {
	if !actor.IsAdmin() {
		return nil, port.ErrUnauthorized
	}
	c, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, port.ErrNotFound
	}
	return c, nil
}

// notify fans a message out to every configured sink plus the in-app
// notification table. Failures are logged and never propagated: by the time
// this runs the financial state is already committed.
func (u *SettlementUseCase) notify(ctx context.Context, userID uuid.UUID, title, message, link string) {
	if err := u.repo.CreateNotification(ctx, domain.Notification{
		UserID: userID, Title: title, Message: message, Link: link,
	}); err != nil {
		u.logger.Error("store notification failed",
			slog.String("user_id", userID.String()), slog.Any("error", err))
	}
	for _, n := range u.notifiers {
		if err := n.Notify(ctx, userID, title, message, link); err != nil {
			u.logger.Error("notify failed",
				slog.String("user_id", userID.String()), slog.Any("error", err))
		}
	}
}
