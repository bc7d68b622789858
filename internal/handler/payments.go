package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// PaymentHandler settles orders.
type PaymentHandler struct {
	pos POS
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(p POS) *PaymentHandler {
	return &PaymentHandler{pos: p}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/payments", h.Pay)
}

// --- Request / Response types ---

type paymentRequest struct {
	// TableID optionally selects the table first, loading its order.
	TableID        string `json:"table_id"`
	Method         string `json:"method"`
	AmountReceived string `json:"amount_received"`
	Tip            string `json:"tip"`
}

type receiptResponse struct {
	Order          pos.Order       `json:"order"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Change         decimal.Decimal `json:"change"`
}

// --- Handlers ---

// Pay handles POST /payments. It settles the order loaded in the caller's
// workspace, or the active order of table_id when given.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Method == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "method is required"})
		return
	}

	p := pos.Payment{Method: req.Method, AmountReceived: decimal.Zero, Tip: decimal.Zero}
	var err error
	if req.AmountReceived != "" {
		if p.AmountReceived, err = decimal.NewFromString(req.AmountReceived); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount_received"})
			return
		}
	}
	if req.Tip != "" {
		if p.Tip, err = decimal.NewFromString(req.Tip); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tip"})
			return
		}
	}

	eng := h.pos.Engine()
	var receipt pos.Receipt
	err = h.pos.Do(r.Context(), "PROCESS_PAYMENT", id, func(s pos.State) (pos.State, error) {
		cur := s
		if req.TableID != "" {
			selected, err := eng.SelectTable(s, id, req.TableID)
			if err != nil {
				return s, err
			}
			cur = selected
		}
		next, rc, err := eng.ProcessPayment(cur, id, p)
		if err != nil {
			return s, err
		}
		receipt = rc
		return next, nil
	})
	if err != nil {
		writePOSError(w, err)
		return
	}

	due := receipt.Order.Total.Add(receipt.Order.Tip)
	writeJSON(w, http.StatusOK, receiptResponse{
		Order:          receipt.Order,
		AmountDue:      due,
		AmountReceived: due.Add(receipt.Change),
		Change:         receipt.Change,
	})
}
