package httpadapter

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"log/slog"

	"resonate/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds the settlement usecase and a logger for structured logging.
// All campaign routes sit behind the admin bearer-token middleware.
type Handler struct {
	svc    port.SettlementUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. The authSecret is
// the HS256 key shared with the identity provider.
func NewHandler(svc port.SettlementUseCase, logger *slog.Logger, authSecret []byte) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(authSecret))
		r.Get("/campaigns/{id}", h.handleGetCampaign)
		r.Post("/campaigns/{id}/approve", h.handleApprove)
		r.Post("/campaigns/{id}/reject", h.handleReject)
		r.Post("/campaigns/{id}/finish", h.handleFinish)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// writeError maps the settlement error taxonomy onto HTTP status codes.
// Unknown errors mean a storage or provider failure with no committed side
// effect; they surface as 500 and are safe for the caller to retry.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, port.ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, port.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, port.ErrNotFound):
		http.Error(w, "campaign not found", http.StatusNotFound)
	case errors.Is(err, port.ErrInvalidState):
		http.Error(w, "campaign already processed", http.StatusConflict)
	default:
		h.logger.Error("settlement error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
