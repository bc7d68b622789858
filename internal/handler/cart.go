package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cboy-pos/api/internal/pos"
	"github.com/cboy-pos/api/internal/quickorder"
	"github.com/go-chi/chi/v5"
)

// CartHandler handles the caller's cart and sending it to the kitchen.
type CartHandler struct {
	pos     POS
	menu    Menu
	matcher *quickorder.Matcher
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(p POS, m Menu) *CartHandler {
	return &CartHandler{pos: p, menu: m, matcher: quickorder.New(m.ItemsInCategory(""))}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.Get)
	r.Post("/cart/items", h.AddItem)
	r.Post("/cart/quick", h.QuickAdd)
	r.Patch("/cart/items/{index}", h.UpdateItem)
	r.Delete("/cart/items/{index}", h.RemoveItem)
	r.Delete("/cart", h.Clear)
}

// --- Request / Response types ---

type addCartItemRequest struct {
	MenuItemID          string   `json:"menu_item_id"`
	Quantity            int      `json:"quantity"`
	ModifierIDs         []string `json:"modifier_ids"`
	SpecialInstructions string   `json:"special_instructions"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type quickAddRequest struct {
	Text string `json:"text"`
}

type quickLineResponse struct {
	Raw        string         `json:"raw"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	Candidates []pos.MenuItem `json:"candidates,omitempty"`
}

type quickAddFailure struct {
	Error    string              `json:"error"`
	Lines    []quickLineResponse `json:"lines"`
	Warnings []string            `json:"warnings,omitempty"`
}

type cartResponse struct {
	TableID string         `json:"table_id,omitempty"`
	Items   []pos.CartItem `json:"items"`
	Totals  pos.Totals     `json:"totals"`
}

// --- Handlers ---

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(s, id))
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.MenuItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu_item_id is required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, found := h.menu.Item(req.MenuItemID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	mods, err := h.menu.Modifiers(item, req.ModifierIDs)
	if err != nil {
		writePOSError(w, err)
		return
	}

	eng := h.pos.Engine()
	h.apply(w, r, "ADD_TO_CART", id, func(s pos.State) (pos.State, error) {
		return eng.AddToCart(s, id, item, req.Quantity, mods, req.SpecialInstructions)
	})
}

// QuickAdd handles POST /cart/quick. Every line of the text must resolve to
// exactly one menu item; otherwise nothing is added and the unresolved lines
// are returned.
func (h *CartHandler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}

	var req quickAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	ticket, err := quickorder.Parse(req.Text)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	type resolved struct {
		item pos.MenuItem
		mods []pos.Modifier
		line quickorder.Line
	}
	var adds []resolved
	var failed []quickLineResponse
	for _, line := range ticket.Lines {
		res := h.matcher.Match(line.Description)
		if res.Status != quickorder.Matched {
			failed = append(failed, quickLineResponse{Raw: line.Raw, Status: res.Status.String(), Candidates: res.Candidates})
			continue
		}
		mods, err := h.menu.Modifiers(*res.Item, line.ModifierIDs)
		if err != nil {
			failed = append(failed, quickLineResponse{Raw: line.Raw, Status: res.Status.String(), Error: err.Error()})
			continue
		}
		adds = append(adds, resolved{item: *res.Item, mods: mods, line: line})
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, quickAddFailure{
			Error:    "some lines could not be matched to the menu",
			Lines:    failed,
			Warnings: ticket.Warnings,
		})
		return
	}

	eng := h.pos.Engine()
	h.apply(w, r, "ADD_TO_CART", id, func(s pos.State) (pos.State, error) {
		cur := s
		for _, a := range adds {
			next, err := eng.AddToCart(cur, id, a.item, a.line.Quantity, a.mods, a.line.Instructions)
			if err != nil {
				return s, err
			}
			cur = next
		}
		return cur, nil
	})
}

// UpdateItem handles PATCH /cart/items/{index}. A quantity of zero removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	index, valid := parseIndex(chi.URLParam(r, "index"))
	if !valid {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart index"})
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	eng := h.pos.Engine()
	h.apply(w, r, "UPDATE_CART_QUANTITY", id, func(s pos.State) (pos.State, error) {
		return eng.UpdateQuantity(s, id, index, req.Quantity)
	})
}

// RemoveItem handles DELETE /cart/items/{index}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	index, valid := parseIndex(chi.URLParam(r, "index"))
	if !valid {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart index"})
		return
	}

	eng := h.pos.Engine()
	h.apply(w, r, "REMOVE_FROM_CART", id, func(s pos.State) (pos.State, error) {
		return eng.RemoveFromCart(s, id, index)
	})
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	eng := h.pos.Engine()
	h.apply(w, r, "CLEAR_CART", id, func(s pos.State) (pos.State, error) {
		return eng.ClearCart(s, id)
	})
}

// --- Helpers ---

func (h *CartHandler) apply(w http.ResponseWriter, r *http.Request, action, id string, fn func(pos.State) (pos.State, error)) {
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
	writeJSON(w, http.StatusOK, h.toCartResponse(after, id))
}

func (h *CartHandler) toCartResponse(s pos.State, staffID string) cartResponse {
	ws := s.Workspace(staffID)
	items := ws.Cart
	if items == nil {
		items = []pos.CartItem{}
	}
	return cartResponse{
		TableID: ws.SelectedTableID,
		Items:   items,
		Totals:  h.pos.Engine().CartTotals(s, staffID),
	}
}
