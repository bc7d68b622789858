package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/cboy-pos/api/internal/auth"
	"github.com/cboy-pos/api/internal/catalog"
	"github.com/cboy-pos/api/internal/middleware"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/cboy-pos/api/internal/service"
)

// POS is the live snapshot the handlers read and change.
// Satisfied by *service.Coordinator; narrow interface for testability.
type POS interface {
	Engine() *pos.Engine
	Do(ctx context.Context, action, actorID string, fn func(pos.State) (pos.State, error)) error
	Snapshot(ctx context.Context) (pos.State, error)
}

// actorID returns the authenticated staff id, writing 401 when there is none.
func actorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return "", false
	}
	return claims.StaffID, true
}

// snapshot reads the current state, writing an error response on failure.
func snapshot(w http.ResponseWriter, r *http.Request, p POS) (pos.State, bool) {
	s, err := p.Snapshot(r.Context())
	if err != nil {
		writePOSError(w, err)
		return pos.State{}, false
	}
	return s, true
}

// writePOSError maps transition errors to HTTP status codes.
func writePOSError(w http.ResponseWriter, err error) {
	var locked *pos.TableLockedError
	switch {
	case errors.As(err, &locked):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error(), "owner": locked.Owner})

	case errors.Is(err, pos.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})

	case errors.Is(err, pos.ErrUnknownStaff):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})

	case errors.Is(err, pos.ErrInvalidTransition),
		errors.Is(err, pos.ErrActiveOrderExists),
		errors.Is(err, pos.ErrDuplicateStaff):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})

	case errors.Is(err, pos.ErrNoTableSelected),
		errors.Is(err, pos.ErrEmptyCart),
		errors.Is(err, pos.ErrNoActiveOrder),
		errors.Is(err, pos.ErrItemUnavailable),
		errors.Is(err, pos.ErrInsufficientAmount),
		errors.Is(err, pos.ErrSelfRemoval):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})

	case errors.Is(err, pos.ErrInvalidStatus),
		errors.Is(err, pos.ErrInvalidQuantity),
		errors.Is(err, pos.ErrInvalidPayment),
		errors.Is(err, pos.ErrInvalidRole),
		errors.Is(err, pos.ErrInvalidStaff),
		errors.Is(err, auth.ErrInvalidPin),
		errors.Is(err, catalog.ErrUnknownModifier):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

	case errors.Is(err, service.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "service unavailable"})

	default:
		log.Printf("ERROR: pos transition: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func parseIndex(s string) (int, bool) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
