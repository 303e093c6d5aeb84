package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an informational in-app message for one user. It is a pure
// side channel: losing one never affects settlement correctness.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Message   string
	Link      string
	CreatedAt time.Time
}
