package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/cboy-pos/api/internal/middleware"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler handles the notification log.
type NotificationHandler struct {
	pos POS
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(p POS) *NotificationHandler {
	return &NotificationHandler{pos: p}
}

// RegisterRoutes registers notification endpoints on the given Chi router.
// Sending and clearing are limited to supervisors.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.List)
	r.Post("/notifications/{id}/read", h.MarkRead)
	r.Post("/notifications/read-all", h.MarkAllRead)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.RoleAdmin, enum.RoleManager))
		r.Post("/notifications", h.Send)
		r.Delete("/notifications", h.Clear)
	})
}

// --- Request / Response types ---

type notificationListResponse struct {
	Notifications []pos.Notification `json:"notifications"`
	Unread        int                `json:"unread"`
}

type sendNotificationRequest struct {
	Message       string `json:"message"`
	RecipientRole string `json:"recipient_role"`
	RecipientID   string `json:"recipient_id"`
}

// --- Handlers ---

// List handles GET /notifications: the caller's notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
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
		writePOSError(w, pos.ErrUnknownStaff)
		return
	}
	writeJSON(w, http.StatusOK, notificationListResponse{
		Notifications: pos.ForStaff(s.Notifications, st),
		Unread:        pos.UnreadCount(s.Notifications, st),
	})
}

// MarkRead handles POST /notifications/{id}/read. Notifications not
// addressed to the caller are reported as not found.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	nid := chi.URLParam(r, "id")
	eng := h.pos.Engine()
	var visible bool
	err := h.pos.Do(r.Context(), "MARK_NOTIFICATION_READ", id, func(s pos.State) (pos.State, error) {
		st, found := s.StaffMember(id)
		if !found {
			return s, pos.ErrUnknownStaff
		}
		for _, n := range s.Notifications {
			if n.ID == nid {
				visible = pos.IsTargeted(n, st)
				break
			}
		}
		if !visible {
			return s, nil
		}
		return eng.MarkRead(s, nid), nil
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	if !visible {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "notification not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	eng := h.pos.Engine()
	err := h.pos.Do(r.Context(), "MARK_ALL_NOTIFICATIONS_READ", id, func(s pos.State) (pos.State, error) {
		st, found := s.StaffMember(id)
		if !found {
			return s, pos.ErrUnknownStaff
		}
		return eng.MarkAllRead(s, st), nil
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send handles POST /notifications: a system message to a role, a staff
// member, or everyone.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}

	var req sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if req.RecipientRole != "" && !enum.IsRole(req.RecipientRole) {
		writePOSError(w, pos.ErrInvalidRole)
		return
	}

	eng := h.pos.Engine()
	var sent pos.Notification
	err := h.pos.Do(r.Context(), "ADD_NOTIFICATION", id, func(s pos.State) (pos.State, error) {
		next := eng.Notify(s, enum.NotificationSystem, req.Message, req.RecipientRole, req.RecipientID, nil)
		sent = next.Notifications[0]
		return next, nil
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sent)
}

// Clear handles DELETE /notifications.
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	eng := h.pos.Engine()
	err := h.pos.Do(r.Context(), "CLEAR_NOTIFICATIONS", id, func(s pos.State) (pos.State, error) {
		return eng.ClearAll(s), nil
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
