package port

import (
	"context"

	"github.com/google/uuid"

	"resonate/internal/core/domain"
)

// MetricsProvider is the boundary to the external engagement-metrics source
// (e.g. a social-platform analytics API). It is fallible per item; the engine
// tolerates partial failure across submissions.
type MetricsProvider interface {
	FetchLatestMetrics(ctx context.Context, submissionID uuid.UUID) (domain.EngagementSnapshot, error)
}
