package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"resonate/internal/core/domain"
)

// campaignResponse is the JSON shape of a campaign. A DTO so that internal
// field changes never leak into the API by accident.
type campaignResponse struct {
	ID              uuid.UUID             `json:"id"`
	ArtistID        uuid.UUID             `json:"artist_id"`
	Title           string                `json:"title"`
	Status          domain.CampaignStatus `json:"status"`
	TotalBudget     int64                 `json:"total_budget"`
	RejectionReason *string               `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// handleGetCampaign returns a single campaign by id.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	c, err := h.svc.GetCampaign(r.Context(), campaignID, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	resp := campaignResponse{
		ID:              c.ID,
		ArtistID:        c.ArtistID,
		Title:           c.Title,
		Status:          c.Status,
		TotalBudget:     c.TotalBudget,
		RejectionReason: c.RejectionReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if err = json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
