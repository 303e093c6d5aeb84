package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"resonate/internal/core/domain"
	"resonate/internal/core/port"
)

var (
	adminActor   = domain.Actor{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"), Role: domain.RoleAdmin}
	artistID     = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	creatorAlice = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	creatorBella = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	campaignID   = uuid.MustParse("cccccccc-0000-0000-0000-000000000001")
)

type repoMock struct{ mock.Mock }

func (m *repoMock) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.Campaign)
	return c, args.Error(1)
}

func (m *repoMock) ListSubmissions(ctx context.Context, campaignID uuid.UUID) ([]domain.Submission, error) {
	args := m.Called(ctx, campaignID)
	subs, _ := args.Get(0).([]domain.Submission)
	return subs, args.Error(1)
}

func (m *repoMock) UpdateSubmissionMetrics(ctx context.Context, submissionID uuid.UUID, score int64, refreshedAt time.Time) error {
	return m.Called(ctx, submissionID, score, refreshedAt).Error(0)
}

func (m *repoMock) ApproveAndHoldBudget(ctx context.Context, campaignID uuid.UUID) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID)
	c, _ := args.Get(0).(*domain.Campaign)
	return c, args.Error(1)
}

func (m *repoMock) CancelAndRefund(ctx context.Context, campaignID uuid.UUID, reason string) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID, reason)
	c, _ := args.Get(0).(*domain.Campaign)
	return c, args.Error(1)
}

func (m *repoMock) CompleteAndDistribute(ctx context.Context, campaignID uuid.UUID, payouts []domain.Payout) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID, payouts)
	c, _ := args.Get(0).(*domain.Campaign)
	return c, args.Error(1)
}

func (m *repoMock) CreateNotification(ctx context.Context, n domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type metricsMock struct{ mock.Mock }

func (m *metricsMock) FetchLatestMetrics(ctx context.Context, submissionID uuid.UUID) (domain.EngagementSnapshot, error) {
	args := m.Called(ctx, submissionID)
	snapshot, _ := args.Get(0).(domain.EngagementSnapshot)
	return snapshot, args.Error(1)
}

type notifierMock struct{ mock.Mock }

func (m *notifierMock) Notify(ctx context.Context, userID uuid.UUID, title, message, link string) error {
	return m.Called(ctx, userID, title, message, link).Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingCampaign() *domain.Campaign {
	return &domain.Campaign{
		ID:          campaignID,
		ArtistID:    artistID,
		Title:       "Album Release Blitz",
		Status:      domain.CampaignPendingApproval,
		TotalBudget: 1000,
	}
}

func activeCampaign() *domain.Campaign {
	c := pendingCampaign()
	c.Status = domain.CampaignActive
	return c
}

func TestRejectRefundsBudget(t *testing.T) {
	repo := new(repoMock)
	repo.On("GetCampaign", mock.Anything, campaignID).Return(pendingCampaign(), nil)

	cancelled := pendingCampaign()
	cancelled.Status = domain.CampaignCancelled
	// the reason must arrive trimmed
	repo.On("CancelAndRefund", mock.Anything, campaignID, "low quality brief").Return(cancelled, nil)
	repo.On("CreateNotification", mock.Anything, mock.AnythingOfType("domain.Notification")).Return(nil)

	svc := NewSettlementUseCase(repo, new(metricsMock), testLogger())
	if err := svc.Reject(context.Background(), campaignID, adminActor, "  low quality brief  "); err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	repo.AssertExpectations(t)
}

func TestRejectPreconditions(t *testing.T) {
	completed := activeCampaign()
	completed.Status = domain.CampaignCompleted

	tests := []struct {
		name     string
		actor    domain.Actor
		reason   string
		campaign *domain.Campaign
		wantErr  error
	}{
		{
			name:    "non-admin actor",
			actor:   domain.Actor{ID: artistID, Role: domain.RoleArtist},
			reason:  "spam",
			wantErr: port.ErrUnauthorized,
		},
		{
			name:    "whitespace-only reason",
			actor:   adminActor,
			reason:  "  ",
			wantErr: port.ErrInvalidInput,
		},
		{
			name:    "campaign does not exist",
			actor:   adminActor,
			reason:  "spam",
			wantErr: port.ErrNotFound,
		},
		{
			name:     "campaign already settled",
			actor:    adminActor,
			reason:   "spam",
			campaign: completed,
			wantErr:  port.ErrInvalidState,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMock)
			repo.On("GetCampaign", mock.Anything, campaignID).Return(tt.campaign, nil).Maybe()

			svc := NewSettlementUseCase(repo, new(metricsMock), testLogger())
			err := svc.Reject(context.Background(), campaignID, tt.actor, tt.reason)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			// a failed precondition must not reach any write
			repo.AssertNotCalled(t, "CancelAndRefund", mock.Anything, mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
		})
	}
}

func submissionsFixture() []domain.Submission {
	return []domain.Submission{
		{
			ID:         uuid.MustParse("dddddddd-0000-0000-0000-000000000001"),
			CampaignID: campaignID,
			CreatorID:  creatorAlice,
		},
		{
			ID:         uuid.MustParse("dddddddd-0000-0000-0000-000000000002"),
			CampaignID: campaignID,
			CreatorID:  creatorBella,
		},
	}
}

func TestFinishSettlesCampaign(t *testing.T) {
	subs := submissionsFixture()
	repo := new(repoMock)
	repo.On("GetCampaign", mock.Anything, campaignID).Return(activeCampaign(), nil)
	repo.On("ListSubmissions", mock.Anything, campaignID).Return(subs, nil)

	metrics := new(metricsMock)
	metrics.On("FetchLatestMetrics", mock.Anything, subs[0].ID).
		Return(domain.EngagementSnapshot{Views: 3}, nil)
	metrics.On("FetchLatestMetrics", mock.Anything, subs[1].ID).
		Return(domain.EngagementSnapshot{Views: 1}, nil)

	repo.On("UpdateSubmissionMetrics", mock.Anything, subs[0].ID, int64(3), mock.AnythingOfType("time.Time")).Return(nil)
	repo.On("UpdateSubmissionMetrics", mock.Anything, subs[1].ID, int64(1), mock.AnythingOfType("time.Time")).Return(nil)

	wantPayouts := []domain.Payout{
		{CreatorID: creatorAlice, Amount: 750},
		{CreatorID: creatorBella, Amount: 250},
	}
	completed := activeCampaign()
	completed.Status = domain.CampaignCompleted
	repo.On("CompleteAndDistribute", mock.Anything, campaignID, wantPayouts).Return(completed, nil)
	repo.On("CreateNotification", mock.Anything, mock.AnythingOfType("domain.Notification")).Return(nil)

	notifier := new(notifierMock)
	notifier.On("Notify", mock.Anything, artistID, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything, creatorAlice, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	notifier.On("Notify", mock.Anything, creatorBella, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewSettlementUseCase(repo, metrics, testLogger(), notifier)
	report, err := svc.Finish(context.Background(), campaignID, adminActor)
	if err != nil {
		t.Fatalf("Finish error: %v", err)
	}
	if report.MetricsRefresh.Updated != 2 || report.MetricsRefresh.Failed != 0 {
		t.Fatalf("unexpected refresh report: %+v", report.MetricsRefresh)
	}
	if len(report.Payouts) != 2 || report.Payouts[0].Amount != 750 || report.Payouts[1].Amount != 250 {
		t.Fatalf("unexpected payouts: %+v", report.Payouts)
	}
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

// TestFinishPartialMetricsFailure ensures one submission's provider failure
// neither aborts the settlement nor loses the previously stored score.
func TestFinishPartialMetricsFailure(t *testing.T) {
	subs := submissionsFixture()
	subs[1].EngagementScore = 1 // stale score survives the failed refresh

	repo := new(repoMock)
	repo.On("GetCampaign", mock.Anything, campaignID).Return(activeCampaign(), nil)
	repo.On("ListSubmissions", mock.Anything, campaignID).Return(subs, nil)

	metrics := new(metricsMock)
	metrics.On("FetchLatestMetrics", mock.Anything, subs[0].ID).
		Return(domain.EngagementSnapshot{Views: 3}, nil)
	metrics.On("FetchLatestMetrics", mock.Anything, subs[1].ID).
		Return(domain.EngagementSnapshot{}, errors.New("provider timeout"))

	repo.On("UpdateSubmissionMetrics", mock.Anything, subs[0].ID, int64(3), mock.AnythingOfType("time.Time")).Return(nil)

	wantPayouts := []domain.Payout{
		{CreatorID: creatorAlice, Amount: 750},
		{CreatorID: creatorBella, Amount: 250},
	}
	completed := activeCampaign()
	completed.Status = domain.CampaignCompleted
	repo.On("CompleteAndDistribute", mock.Anything, campaignID, wantPayouts).Return(completed, nil)
	repo.On("CreateNotification", mock.Anything, mock.AnythingOfType("domain.Notification")).Return(nil)

	svc := NewSettlementUseCase(repo, metrics, testLogger())
	report, err := svc.Finish(context.Background(), campaignID, adminActor)
	if err != nil {
		t.Fatalf("Finish error: %v", err)
	}
	if report.MetricsRefresh.Updated != 1 || report.MetricsRefresh.Failed != 1 {
		t.Fatalf("unexpected refresh report: %+v", report.MetricsRefresh)
	}
	repo.AssertExpectations(t)
}

// TestFinishNoQualifyingSubmissions: the entire budget goes back to the
// artist, payouts are empty.
func TestFinishNoQualifyingSubmissions(t *testing.T) {
	repo := new(repoMock)
	repo.On("GetCampaign", mock.Anything, campaignID).Return(activeCampaign(), nil)
	repo.On("ListSubmissions", mock.Anything, campaignID).Return([]domain.Submission{}, nil)

	completed := activeCampaign()
	completed.Status = domain.CampaignCompleted
	repo.On("CompleteAndDistribute", mock.Anything, campaignID, []domain.Payout(nil)).Return(completed, nil)
	repo.On("CreateNotification", mock.Anything, mock.AnythingOfType("domain.Notification")).Return(nil)

	svc := NewSettlementUseCase(repo, new(metricsMock), testLogger())
	report, err := svc.Finish(context.Background(), campaignID, adminActor)
	if err != nil {
		t.Fatalf("Finish error: %v", err)
	}
	if len(report.Payouts) != 0 {
		t.Fatalf("expected no payouts, got %+v", report.Payouts)
	}
	repo.AssertExpectations(t)
}

// TestFinishRepeatedCall: once a campaign is COMPLETED a second Finish fails
// with ErrInvalidState before any settlement work begins.
func TestFinishRepeatedCall(t *testing.T) {
	completed := activeCampaign()
	completed.Status = domain.CampaignCompleted

	repo := new(repoMock)
	repo.On("GetCampaign", mock.Anything, campaignID).Return(completed, nil)

	svc := NewSettlementUseCase(repo, new(metricsMock), testLogger())
	_, err := svc.Finish(context.Background(), campaignID, adminActor)
	if !errors.Is(err, port.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	repo.AssertNotCalled(t, "CompleteAndDistribute", mock.Anything, mock.Anything, mock.Anything)
}

// TestFinishLosesCommitRace: the fast-path status check passed but another
// caller completed the campaign first; the repository's locked re-check
// rejects the distribution and nothing is reported as paid.
func TestFinishLosesCommitRace(t *testing.T) {
	repo := new(repoMock)
	repo.On("GetCampaign", mock.Anything, campaignID).Return(activeCampaign(), nil)
	repo.On("ListSubmissions", mock.Anything, campaignID).Return([]domain.Submission{}, nil)
	repo.On("CompleteAndDistribute", mock.Anything, campaignID, []domain.Payout(nil)).
		Return(nil, port.ErrInvalidState)

	svc := NewSettlementUseCase(repo, new(metricsMock), testLogger())
	_, err := svc.Finish(context.Background(), campaignID, adminActor)
	if !errors.Is(err, port.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
}

// TestFinishNotifierFailureDoesNotFail: a broken notification sink never
// turns a committed settlement into an error.
func TestFinishNotifierFailureDoesNotFail(t *testing.T) {
	repo := new(repoMock)
	repo.On("GetCampaign", mock.Anything, campaignID).Return(activeCampaign(), nil)
	repo.On("ListSubmissions", mock.Anything, campaignID).Return([]domain.Submission{}, nil)

	completed := activeCampaign()
	completed.Status = domain.CampaignCompleted
	repo.On("CompleteAndDistribute", mock.Anything, campaignID, []domain.Payout(nil)).Return(completed, nil)
	repo.On("CreateNotification", mock.Anything, mock.AnythingOfType("domain.Notification")).
		Return(errors.New("notifications table unavailable"))

	notifier := new(notifierMock)
	notifier.On("Notify", mock.Anything, artistID, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker down"))

	svc := NewSettlementUseCase(repo, new(metricsMock), testLogger(), notifier)
	if _, err := svc.Finish(context.Background(), campaignID, adminActor); err != nil {
		t.Fatalf("Finish error: %v", err)
	}
}

func TestFinishStorageFailurePropagates(t *testing.T) {
	storageErr := errors.New("connection reset")
	repo := new(repoMock)
	repo.On("GetCampaign", mock.Anything, campaignID).Return(activeCampaign(), nil)
	repo.On("ListSubmissions", mock.Anything, campaignID).Return([]domain.Submission{}, nil)
	repo.On("CompleteAndDistribute", mock.Anything, campaignID, []domain.Payout(nil)).
		Return(nil, storageErr)

	svc := NewSettlementUseCase(repo, new(metricsMock), testLogger())
	_, err := svc.Finish(context.Background(), campaignID, adminActor)
	if !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error, got %v", err)
	}
	repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
}

func TestApproveHoldsBudget(t *testing.T) {
	repo := new(repoMock)
	repo.On("GetCampaign", mock.Anything, campaignID).Return(pendingCampaign(), nil)
	active := activeCampaign()
	repo.On("ApproveAndHoldBudget", mock.Anything, campaignID).Return(active, nil)
	repo.On("CreateNotification", mock.Anything, mock.AnythingOfType("domain.Notification")).Return(nil)

	svc := NewSettlementUseCase(repo, new(metricsMock), testLogger())
	if err := svc.Approve(context.Background(), campaignID, adminActor); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	repo.AssertExpectations(t)
}

func TestApproveRequiresAdmin(t *testing.T) {
	svc := NewSettlementUseCase(new(repoMock), new(metricsMock), testLogger())
	err := svc.Approve(context.Background(), campaignID, domain.Actor{ID: creatorAlice, Role: domain.RoleCreator})
	if !errors.Is(err, port.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
