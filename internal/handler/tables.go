package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
)

// TableHandler handles the floor: listing, selecting and releasing tables.
type TableHandler struct {
	pos POS
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(p POS) *TableHandler {
	return &TableHandler{pos: p}
}

// RegisterRoutes registers table endpoints on the given Chi router.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.List)
	r.Post("/tables/{id}/select", h.Select)
	r.Patch("/tables/{id}/status", h.UpdateStatus)
	r.Post("/tables/{id}/done", h.Done)
}

// --- Request / Response types ---

type tableResponse struct {
	pos.Table
	OwnerName     string `json:"owner_name,omitempty"`
	ActiveOrderID string `json:"active_order_id,omitempty"`
}

type tableListResponse struct {
	Tables []tableResponse `json:"tables"`
	Counts map[string]int  `json:"counts"`
}

type updateTableStatusRequest struct {
	Status string `json:"status"`
}

type selectTableResponse struct {
	Table     tableResponse `json:"table"`
	Workspace pos.Workspace `json:"workspace"`
	Order     *pos.Order    `json:"order,omitempty"`
}

// --- Handlers ---

// List handles GET /tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	out := make([]tableResponse, 0, len(s.Tables))
	for _, t := range s.Tables {
		out = append(out, toTableResponse(s, t))
	}
	writeJSON(w, http.StatusOK, tableListResponse{Tables: out, Counts: pos.TableStatusCounts(s.Tables)})
}

// Select handles POST /tables/{id}/select. A waiter takes the table's lock;
// the table's active order is loaded into the caller's workspace.
func (h *TableHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	tableID := chi.URLParam(r, "id")

	eng := h.pos.Engine()
	var after pos.State
	err := h.pos.Do(r.Context(), "SELECT_TABLE", id, func(s pos.State) (pos.State, error) {
		next, err := eng.SelectTable(s, id, tableID)
		after = next
		return next, err
	})
	if err != nil {
		writePOSError(w, err)
		return
	}

	t, found := after.Table(tableID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}
	resp := selectTableResponse{Table: toTableResponse(after, t), Workspace: after.Workspace(id)}
	if o, found := after.Order(resp.Workspace.CurrentOrderID); found {
		resp.Order = &o
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /tables/{id}/status.
func (h *TableHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	tableID := chi.URLParam(r, "id")

	var req updateTableStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	eng := h.pos.Engine()
	h.applyAndRespond(w, r, "UPDATE_TABLE_STATUS", id, tableID, func(s pos.State) (pos.State, error) {
		return eng.UpdateTableStatus(s, id, tableID, req.Status)
	})
}

// Done handles POST /tables/{id}/done: the table's order is closed and the
// table is released.
func (h *TableHandler) Done(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	tableID := chi.URLParam(r, "id")

	eng := h.pos.Engine()
	h.applyAndRespond(w, r, "MARK_TABLE_DONE", id, tableID, func(s pos.State) (pos.State, error) {
		return eng.MarkTableDone(s, id, tableID)
	})
}

// --- Helpers ---

func (h *TableHandler) applyAndRespond(w http.ResponseWriter, r *http.Request, action, id, tableID string, fn func(pos.State) (pos.State, error)) {
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
	t, found := after.Table(tableID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}
	writeJSON(w, http.StatusOK, toTableResponse(after, t))
}

func toTableResponse(s pos.State, t pos.Table) tableResponse {
	resp := tableResponse{Table: t}
	if t.AssignedWaiterID != "" {
		if st, ok := s.StaffMember(t.AssignedWaiterID); ok {
			resp.OwnerName = st.Name
		}
	}
	if o, ok := s.ActiveOrderForTable(t.ID); ok {
		resp.ActiveOrderID = o.ID
	}
	return resp
}
