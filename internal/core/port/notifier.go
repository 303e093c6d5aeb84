package port

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers a user-facing message. Fire-and-forget: implementations
// are invoked only after the financial unit of work has committed, and their
// failures are logged, never retried by the engine.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, link string) error
}
