package handler

import (
	"net/http"

	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
)

// KitchenHandler serves the kitchen board.
type KitchenHandler struct {
	pos POS
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(p POS) *KitchenHandler {
	return &KitchenHandler{pos: p}
}

// RegisterRoutes registers kitchen endpoints on the given Chi router.
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/kitchen", h.Board)
}

// Board handles GET /kitchen.
func (h *KitchenHandler) Board(w http.ResponseWriter, r *http.Request) {
	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pos.KitchenQueues(s.Orders, h.pos.Engine().Now()))
}
