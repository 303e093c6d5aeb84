package domain

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a piece of creator-produced content entered into a campaign.
// EngagementScore is the latest known engagement count reported by the
// external metrics provider; MetricsRefreshedAt records when it was last
// updated.
type Submission struct {
	ID                 uuid.UUID
	CampaignID         uuid.UUID
	CreatorID          uuid.UUID
	ContentURL         string
	EngagementScore    int64
	Disqualified       bool
	MetricsRefreshedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EngagementSnapshot is the latest engagement reading for a submission as
// reported by the metrics provider.
type EngagementSnapshot struct {
	Views        int64 `json:"views"`
	Interactions int64 `json:"interactions"`
}

// Score collapses a snapshot into the single engagement score used for
// payout weighting. Interactions weigh heavier than raw views.
func (s EngagementSnapshot) Score() int64 {
	return s.Views + 10*s.Interactions
}
