package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cboy-pos/api/internal/auth"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
)

// StaffHandler handles roster management.
type StaffHandler struct {
	pos POS
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(p POS) *StaffHandler {
	return &StaffHandler{pos: p}
}

// RegisterRoutes registers staff endpoints on the given Chi router.
// Expected to be mounted behind RequireOperation(pos.OpManageStaff).
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/staff", h.List)
	r.Post("/staff", h.Create)
	r.Put("/staff/{id}", h.Update)
	r.Delete("/staff/{id}", h.Delete)
}

// --- Request / Response types ---

type staffRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
	Pin  string `json:"pin"`
}

// --- Handlers ---

// List handles GET /staff.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	out := make([]staffResponse, 0, len(s.Staff))
	for _, st := range s.Staff {
		out = append(out, toStaffResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /staff.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Role == "" || req.Pin == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, role and pin are required"})
		return
	}
	hash, err := auth.HashPin(req.Pin)
	if err != nil {
		writePOSError(w, err)
		return
	}

	eng := h.pos.Engine()
	var created pos.Staff
	err = h.pos.Do(r.Context(), "ADD_STAFF", id, func(s pos.State) (pos.State, error) {
		next, st, err := eng.AddStaff(s, id, pos.Staff{ID: req.ID, Name: req.Name, Role: req.Role, Pin: hash})
		created = st
		return next, err
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStaffResponse(created))
}

// Update handles PUT /staff/{id}. Empty fields are left unchanged.
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	staffID := chi.URLParam(r, "id")

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	var hash string
	if req.Pin != "" {
		var err error
		if hash, err = auth.HashPin(req.Pin); err != nil {
			writePOSError(w, err)
			return
		}
	}

	eng := h.pos.Engine()
	var after pos.State
	err := h.pos.Do(r.Context(), "UPDATE_STAFF", id, func(s pos.State) (pos.State, error) {
		next, err := eng.UpdateStaff(s, id, pos.Staff{ID: staffID, Name: req.Name, Role: req.Role, Pin: hash})
		after = next
		return next, err
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	st, found := after.StaffMember(staffID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
		return
	}
	writeJSON(w, http.StatusOK, toStaffResponse(st))
}

// Delete handles DELETE /staff/{id}.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	staffID := chi.URLParam(r, "id")

	eng := h.pos.Engine()
	err := h.pos.Do(r.Context(), "REMOVE_STAFF", id, func(s pos.State) (pos.State, error) {
		return eng.RemoveStaff(s, id, staffID)
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
