package handler_test

import (
	"net/http"
	"testing"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/cboy-pos/api/internal/pos"
)

type cartBody struct {
	TableID string         `json:"table_id"`
	Items   []pos.CartItem `json:"items"`
	Totals  pos.Totals     `json:"totals"`
}

func TestCart_AddMergeAndTotals(t *testing.T) {
	env := newTestEnv(t)
	w1 := tokenFor(t, "w1", enum.RoleWaiter)
	expectStatus(t, env.do(t, "POST", "/tables/t1/select", w1, nil), http.StatusOK)

	add := map[string]interface{}{"menu_item_id": "burger", "quantity": 1, "modifier_ids": []string{"cheese"}}
	expectStatus(t, env.do(t, "POST", "/cart/items", w1, add), http.StatusOK)
	rr := env.do(t, "POST", "/cart/items", w1, add)
	expectStatus(t, rr, http.StatusOK)

	var cart cartBody
	decodeInto(t, rr, &cart)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("lines should merge: got %+v", cart.Items)
	}
	// (12 + 1) x 2 = 26; tax 2.08
	if cart.Totals.Subtotal.String() != "26" || cart.Totals.Tax.String() != "2.08" || cart.Totals.Total.String() != "28.08" {
		t.Errorf("totals: got %s/%s/%s", cart.Totals.Subtotal, cart.Totals.Tax, cart.Totals.Total)
	}

	rr = env.do(t, "PATCH", "/cart/items/0", w1, map[string]int{"quantity": 0})
	expectStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &cart)
	if len(cart.Items) != 0 || !cart.Totals.Total.IsZero() {
		t.Errorf("zero quantity should remove the line: %+v", cart)
	}
}

func TestCart_Rejects(t *testing.T) {
	env := newTestEnv(t)
	w1 := tokenFor(t, "w1", enum.RoleWaiter)

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"missing item", map[string]interface{}{}, http.StatusBadRequest},
		{"unknown item", map[string]interface{}{"menu_item_id": "lobster"}, http.StatusNotFound},
		{"unavailable item", map[string]interface{}{"menu_item_id": "soup"}, http.StatusUnprocessableEntity},
		{"negative quantity", map[string]interface{}{"menu_item_id": "cola", "quantity": -1}, http.StatusBadRequest},
		{"foreign modifier", map[string]interface{}{"menu_item_id": "cola", "modifier_ids": []string{"cheese"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, "POST", "/cart/items", w1, tt.body), tt.want)
		})
	}
	if len(env.pos.actions) != 0 {
		t.Errorf("no transition should commit, got %v", env.pos.actions)
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	env := newTestEnv(t)
	w1 := tokenFor(t, "w1", enum.RoleWaiter)
	expectStatus(t, env.do(t, "POST", "/cart/items", w1, map[string]interface{}{"menu_item_id": "cola"}), http.StatusOK)
	expectStatus(t, env.do(t, "POST", "/cart/items", w1, map[string]interface{}{"menu_item_id": "burger"}), http.StatusOK)

	rr := env.do(t, "DELETE", "/cart/items/0", w1, nil)
	expectStatus(t, rr, http.StatusOK)
	var cart cartBody
	decodeInto(t, rr, &cart)
	if len(cart.Items) != 1 || cart.Items[0].MenuItem.ID != "burger" {
		t.Errorf("remove: got %+v", cart.Items)
	}

	expectStatus(t, env.do(t, "DELETE", "/cart/items/x", w1, nil), http.StatusBadRequest)

	rr = env.do(t, "DELETE", "/cart", w1, nil)
	expectStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &cart)
	if len(cart.Items) != 0 {
		t.Errorf("clear: got %+v", cart.Items)
	}

	// Carts are per staff member.
	rr = env.do(t, "GET", "/cart", tokenFor(t, "w2", enum.RoleWaiter), nil)
	expectStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &cart)
	if len(cart.Items) != 0 {
		t.Errorf("w2 cart: got %+v", cart.Items)
	}
}

func TestCart_QuickAdd(t *testing.T) {
	env := newTestEnv(t)
	w1 := tokenFor(t, "w1", enum.RoleWaiter)

	rr := env.do(t, "POST", "/cart/quick", w1, map[string]string{"text": "2x burger +cheese -- no pickles\ncola"})
	expectStatus(t, rr, http.StatusOK)
	var cart cartBody
	decodeInto(t, rr, &cart)
	if len(cart.Items) != 2 {
		t.Fatalf("items: got %+v", cart.Items)
	}
	first := cart.Items[0]
	if first.MenuItem.ID != "burger" || first.Quantity != 2 || len(first.Modifiers) != 1 || first.SpecialInstructions != "no pickles" {
		t.Errorf("first line: got %+v", first)
	}
	if cart.Items[1].MenuItem.ID != "cola" || cart.Items[1].Quantity != 1 {
		t.Errorf("second line: got %+v", cart.Items[1])
	}
}

func TestCart_QuickAddAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	w1 := tokenFor(t, "w1", enum.RoleWaiter)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", " \n ", http.StatusBadRequest},
		{"unknown item", "cola\nlobster", http.StatusUnprocessableEntity},
		{"unknown modifier", "cola +cheese", http.StatusUnprocessableEntity},
		{"unavailable item", "soup", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, "POST", "/cart/quick", w1, map[string]string{"text": tt.text}), tt.want)
		})
	}
	if cart := env.pos.current().Workspace("w1").Cart; len(cart) != 0 {
		t.Errorf("cart should stay empty, got %+v", cart)
	}
}
