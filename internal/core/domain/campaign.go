package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the lifecycle state of a campaign. Transitions are
// strictly PENDING_APPROVAL -> ACTIVE -> COMPLETED, or
// PENDING_APPROVAL -> CANCELLED on rejection.
type CampaignStatus string

const (
	CampaignPendingApproval CampaignStatus = "PENDING_APPROVAL"
	CampaignActive          CampaignStatus = "ACTIVE"
	CampaignCompleted       CampaignStatus = "COMPLETED"
	CampaignCancelled       CampaignStatus = "CANCELLED"
)

// Campaign represents a funded promotional engagement between an artist and
// creators. TotalBudget is stored in integer minor units (e.g. cents) and is
// immutable once set; the artist's balance holds or releases it only through
// ledger entries.
type Campaign struct {
	ID              uuid.UUID
	ArtistID        uuid.UUID
	Title           string
	Status          CampaignStatus
	TotalBudget     int64
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the campaign has reached a final state. Submissions
// of a terminal campaign are immutable.
func (s CampaignStatus) Terminal() bool {
	switch s {
	case CampaignCompleted, CampaignCancelled:
		return true
	case CampaignPendingApproval, CampaignActive:
		return false
	}
	return false
}
