package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
)

// WorkspaceHandler exposes the caller's active context.
type WorkspaceHandler struct {
	pos POS
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(p POS) *WorkspaceHandler {
	return &WorkspaceHandler{pos: p}
}

// RegisterRoutes registers workspace endpoints on the given Chi router.
func (h *WorkspaceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/workspace", h.Get)
	r.Put("/workspace/view", h.SetView)
	r.Put("/workspace/category", h.SetCategory)
}

// --- Request / Response types ---

type workspaceResponse struct {
	pos.Workspace
	Table  *pos.Table `json:"table,omitempty"`
	Order  *pos.Order `json:"order,omitempty"`
	Totals pos.Totals `json:"totals"`
}

type setViewRequest struct {
	View string `json:"view"`
}

type setCategoryRequest struct {
	Category string `json:"category"`
}

// --- Handlers ---

// Get handles GET /workspace.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.toWorkspaceResponse(s, id))
}

// SetView handles PUT /workspace/view.
func (h *WorkspaceHandler) SetView(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	var req setViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !enum.IsView(req.View) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid view"})
		return
	}
	eng := h.pos.Engine()
	h.apply(w, r, "SET_ACTIVE_VIEW", id, func(s pos.State) (pos.State, error) {
		return eng.SetActiveView(s, id, req.View)
	})
}

// SetCategory handles PUT /workspace/category. An empty category shows
// the whole menu.
func (h *WorkspaceHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	var req setCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	eng := h.pos.Engine()
	h.apply(w, r, "SET_SELECTED_CATEGORY", id, func(s pos.State) (pos.State, error) {
		return eng.SetSelectedCategory(s, id, req.Category)
	})
}

// --- Helpers ---

func (h *WorkspaceHandler) apply(w http.ResponseWriter, r *http.Request, action, id string, fn func(pos.State) (pos.State, error)) {
	var after pos.State
	err := h.pos.Do(r.Context(), action, id, func(s pos.State) (pos.State, error) {
		next, err := fn(s)
		after = next
		return next, err
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toWorkspaceResponse(after, id))
}

func (h *WorkspaceHandler) toWorkspaceResponse(s pos.State, staffID string) workspaceResponse {
	ws := s.Workspace(staffID)
	if ws.Cart == nil {
		ws.Cart = []pos.CartItem{}
	}
	resp := workspaceResponse{Workspace: ws, Totals: h.pos.Engine().CartTotals(s, staffID)}
	if t, ok := s.Table(ws.SelectedTableID); ok {
		resp.Table = &t
	}
	if o, ok := s.Order(ws.CurrentOrderID); ok {
		resp.Order = &o
	}
	return resp
}
