package handler

import (
	"net/http"

	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
)

// OrderHandler handles placing orders and moving them through the kitchen.
type OrderHandler struct {
	pos POS
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(p POS) *OrderHandler {
	return &OrderHandler{pos: p}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Place)
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Post("/orders/{id}/accept", h.Accept)
	r.Post("/orders/{id}/start", h.Start)
	r.Post("/orders/{id}/ready", h.Ready)
	r.Post("/orders/{id}/serve", h.Serve)
	r.Post("/orders/{id}/cancel", h.Cancel)
	r.Post("/orders/{id}/items/{itemID}/unavailable", h.ItemUnavailable)
}

// --- Request / Response types ---

type orderListResponse struct {
	Orders []pos.Order `json:"orders"`
	Count  int         `json:"count"`
}

// --- Handlers ---

// Place handles POST /orders: the caller's cart for their selected table
// is sent to the kitchen.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}

	eng := h.pos.Engine()
	var placed pos.Order
	err := h.pos.Do(r.Context(), "PLACE_ORDER", id, func(s pos.State) (pos.State, error) {
		next, o, err := eng.PlaceOrder(s, id)
		placed = o
		return next, err
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}

// List handles GET /orders?q=&status=. Waiters only see their own orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
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

	q := r.URL.Query()
	orders := pos.VisibleOrders(s.Orders, st, pos.OrderFilter{Query: q.Get("q"), Status: q.Get("status")})
	writeJSON(w, http.StatusOK, orderListResponse{Orders: orders, Count: len(orders)})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	o, found := s.Order(chi.URLParam(r, "id"))
	if !found || len(pos.VisibleOrders([]pos.Order{o}, st, pos.OrderFilter{})) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Accept handles POST /orders/{id}/accept.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	eng := h.pos.Engine()
	h.step(w, r, "ACCEPT_ORDER", eng.AcceptOrder)
}

// Start handles POST /orders/{id}/start.
func (h *OrderHandler) Start(w http.ResponseWriter, r *http.Request) {
	eng := h.pos.Engine()
	h.step(w, r, "START_ORDER", eng.StartOrder)
}

// Ready handles POST /orders/{id}/ready.
func (h *OrderHandler) Ready(w http.ResponseWriter, r *http.Request) {
	eng := h.pos.Engine()
	h.step(w, r, "MARK_ORDER_READY", eng.MarkOrderReady)
}

// Serve handles POST /orders/{id}/serve: the ready order is picked up and
// loaded into the caller's workspace for payment.
func (h *OrderHandler) Serve(w http.ResponseWriter, r *http.Request) {
	eng := h.pos.Engine()
	h.step(w, r, "MARK_ORDER_SERVED", eng.MarkOrderServed)
}

// Cancel handles POST /orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	eng := h.pos.Engine()
	h.step(w, r, "CANCEL_ORDER", eng.CancelOrder)
}

// ItemUnavailable handles POST /orders/{id}/items/{itemID}/unavailable.
func (h *OrderHandler) ItemUnavailable(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	eng := h.pos.Engine()
	h.step(w, r, "MARK_ITEM_UNAVAILABLE", func(s pos.State, actorID, orderID string) (pos.State, error) {
		return eng.MarkItemUnavailable(s, actorID, orderID, itemID)
	})
}

// --- Helpers ---

// step applies one order transition and responds with the updated order.
// Unknown orders are left alone by the engine and reported as 404 here.
func (h *OrderHandler) step(w http.ResponseWriter, r *http.Request, action string, fn func(s pos.State, actorID, orderID string) (pos.State, error)) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "id")

	var after pos.State
	err := h.pos.Do(r.Context(), action, id, func(s pos.State) (pos.State, error) {
		next, err := fn(s, id, orderID)
		after = next
		return next, err
	})
	if err != nil {
		writePOSError(w, err)
		return
	}
	o, found := after.Order(orderID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}
