package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/cboy-pos/api/internal/auth"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
)

// AuthHandler handles login, token refresh and logout.
type AuthHandler struct {
	pos       POS
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(p POS, jwtSecret string) *AuthHandler {
	return &AuthHandler{pos: p, jwtSecret: jwtSecret}
}

// RegisterRoutes registers the public auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/staff", h.Roster)
	r.Post("/auth/pin-login", h.PinLogin)
	r.Post("/auth/refresh", h.Refresh)
}

// RegisterProtectedRoutes registers auth endpoints that need a valid token.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)
}

// --- Request / Response types ---

type pinLoginRequest struct {
	StaffID string `json:"staff_id"`
	Pin     string `json:"pin"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	Staff        staffResponse `json:"staff"`
	View         string        `json:"view"`
}

type staffResponse struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Role                string          `json:"role"`
	IsOnline            bool            `json:"is_online"`
	CurrentSessionStart *time.Time      `json:"current_session_start,omitempty"`
	LastLogin           *time.Time      `json:"last_login,omitempty"`
	DailyOnlineMinutes  int             `json:"daily_online_minutes"`
	Attendance          *pos.Attendance `json:"attendance,omitempty"`
}

// rosterEntry is what the login screen may show before anyone signs in.
type rosterEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// --- Handlers ---

// Roster handles GET /auth/staff.
func (h *AuthHandler) Roster(w http.ResponseWriter, r *http.Request) {
	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	out := make([]rosterEntry, 0, len(s.Staff))
	for _, st := range s.Staff {
		out = append(out, rosterEntry{ID: st.ID, Name: st.Name, Role: st.Role})
	}
	writeJSON(w, http.StatusOK, out)
}

// PinLogin handles staff_id + PIN authentication and starts a session.
func (h *AuthHandler) PinLogin(w http.ResponseWriter, r *http.Request) {
	var req pinLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.StaffID == "" || req.Pin == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "staff_id and pin are required"})
		return
	}

	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	st, found := s.StaffMember(req.StaffID)
	if !found || !auth.CheckPin(st.Pin, req.Pin) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	eng := h.pos.Engine()
	var after pos.State
	err := h.pos.Do(r.Context(), "START_SESSION", st.ID, func(s pos.State) (pos.State, error) {
		next, err := eng.StartSession(s, st.ID)
		after = next
		return next, err
	})
	if err != nil {
		writePOSError(w, err)
		return
	}

	st, _ = after.StaffMember(st.ID)
	h.respondWithTokens(w, st, after.Workspace(st.ID).ActiveView)
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
// The role is read from the roster again, so role changes apply on refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	staffID, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	st, found := s.StaffMember(staffID)
	if !found {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "staff not found"})
		return
	}

	h.respondWithTokens(w, st, s.Workspace(st.ID).ActiveView)
}

// Logout handles POST /auth/logout and ends the caller's session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	eng := h.pos.Engine()
	err := h.pos.Do(r.Context(), "END_SESSION", id, func(s pos.State) (pos.State, error) {
		return eng.EndSession(s, id)
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	st, found := s.StaffMember(id)
	if !found {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "staff not found"})
		return
	}
	writeJSON(w, http.StatusOK, toStaffResponse(st))
}

// --- Helpers ---

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, st pos.Staff, view string) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, st.ID, st.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, st.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Staff:        toStaffResponse(st),
		View:         view,
	})
}

func toStaffResponse(st pos.Staff) staffResponse {
	return staffResponse{
		ID:                  st.ID,
		Name:                st.Name,
		Role:                st.Role,
		IsOnline:            st.IsOnline,
		CurrentSessionStart: st.CurrentSessionStart,
		LastLogin:           st.LastLogin,
		DailyOnlineMinutes:  st.DailyOnlineMinutes,
		Attendance:          st.Attendance,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
