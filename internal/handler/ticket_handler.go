package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/shiva/crewrouter/internal/model"
)

// TicketStore is the read-side collaborator TicketHandler depends on.
type TicketStore interface {
	GetTicket(ctx context.Context, id string) (model.Ticket, error)
}

// TicketHandler exposes read access to individual tickets, mainly for
// operators inspecting why a ticket did or didn't make a route.
type TicketHandler struct {
	store  TicketStore
	logger *zap.Logger
}

// NewTicketHandler creates a handler wired to the given ticket store.
func NewTicketHandler(store TicketStore, logger *zap.Logger) *TicketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketHandler{store: store, logger: logger}
}

// GetTicket handles GET /api/v1/tickets/{id}.
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing ticket id"})
		return
	}

	ticket, err := h.store.GetTicket(r.Context(), id)
	if err != nil {
		h.logger.Warn("ticket handler: get ticket failed", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": "ticket not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}
