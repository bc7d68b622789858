package pos

import (
	"fmt"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Totals is the priced summary of a cart. Values are exact; rounding to two
// decimals happens only when they are displayed.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals prices a cart:
// subtotal = Σ (item price + Σ modifier prices) × quantity,
// tax = subtotal × taxRate, total = subtotal + tax.
func ComputeTotals(cart []CartItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range cart {
		subtotal = subtotal.Add(line.UnitPrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

func unitPrice(item MenuItem, modifiers []Modifier) decimal.Decimal {
	price := item.Price
	for _, m := range modifiers {
		price = price.Add(m.Price)
	}
	return price
}

// CartTotals prices the actor's current cart with the engine's tax rate.
func (e *Engine) CartTotals(s State, actorID string) Totals {
	return ComputeTotals(s.Workspace(actorID).Cart, e.taxRate)
}

// AddToCart adds quantity of item to the actor's cart. A line with the same
// menu item and the same modifiers in the same order absorbs the quantity;
// otherwise a new line is appended.
func (e *Engine) AddToCart(s State, actorID string, item MenuItem, quantity int, modifiers []Modifier, instructions string) (State, error) {
	if _, err := e.actor(s, actorID); err != nil {
		return s, err
	}
	if quantity < 1 {
		return s, ErrInvalidQuantity
	}
	if !item.IsAvailable {
		return s, fmt.Errorf("%s: %w", item.Name, ErrItemUnavailable)
	}

	next := s.clone()
	ws := next.Workspace(actorID)
	cart := append([]CartItem(nil), ws.Cart...)

	merged := false
	for i := range cart {
		if cart[i].MenuItem.ID == item.ID && sameModifiers(cart[i].Modifiers, modifiers) {
			cart[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart = append(cart, CartItem{
			MenuItem:            item,
			Quantity:            quantity,
			Modifiers:           append([]Modifier(nil), modifiers...),
			SpecialInstructions: instructions,
		})
	}

	ws.Cart = cart
	next.Workspaces[actorID] = ws
	return next, nil
}

// UpdateQuantity replaces the quantity of cart line index. A quantity of
// zero or less removes the line. Out-of-range indexes are ignored.
func (e *Engine) UpdateQuantity(s State, actorID string, index, quantity int) (State, error) {
	if quantity <= 0 {
		return e.RemoveFromCart(s, actorID, index)
	}
	if _, err := e.actor(s, actorID); err != nil {
		return s, err
	}
	ws := s.Workspace(actorID)
	if index < 0 || index >= len(ws.Cart) {
		return s, nil
	}

	next := s.clone()
	cart := append([]CartItem(nil), ws.Cart...)
	cart[index].Quantity = quantity
	ws.Cart = cart
	next.Workspaces[actorID] = ws
	return next, nil
}

// RemoveFromCart drops cart line index. Out-of-range indexes are ignored.
func (e *Engine) RemoveFromCart(s State, actorID string, index int) (State, error) {
	if _, err := e.actor(s, actorID); err != nil {
		return s, err
	}
	ws := s.Workspace(actorID)
	if index < 0 || index >= len(ws.Cart) {
		return s, nil
	}

	next := s.clone()
	cart := make([]CartItem, 0, len(ws.Cart)-1)
	cart = append(cart, ws.Cart[:index]...)
	cart = append(cart, ws.Cart[index+1:]...)
	ws.Cart = cart
	next.Workspaces[actorID] = ws
	return next, nil
}

// ClearCart empties the actor's cart.
func (e *Engine) ClearCart(s State, actorID string) (State, error) {
	if _, err := e.actor(s, actorID); err != nil {
		return s, err
	}
	next := s.clone()
	ws := next.Workspace(actorID)
	ws.Cart = nil
	next.Workspaces[actorID] = ws
	return next, nil
}

// PlaceOrder turns the actor's cart into a pending order for the selected
// table. Items and prices are copied, so later catalog changes never touch
// a placed order. The table moves to waiting-for-food, the cart is cleared
// and the kitchen is notified.
//
// A table holding an open (editable) order has that order submitted in
// place; any other active order on the table blocks a new one.
func (e *Engine) PlaceOrder(s State, actorID string) (State, Order, error) {
	actor, err := e.actor(s, actorID)
	if err != nil {
		return s, Order{}, err
	}
	if !Allowed(actor.Role, OpPlaceOrder) {
		return s, Order{}, ErrUnauthorized
	}
	ws := s.Workspace(actorID)
	ti := s.tableIndex(ws.SelectedTableID)
	if ws.SelectedTableID == "" || ti < 0 {
		return s, Order{}, ErrNoTableSelected
	}
	if len(ws.Cart) == 0 {
		return s, Order{}, ErrEmptyCart
	}
	table := s.Tables[ti]
	if actor.Role == enum.RoleWaiter && table.AssignedWaiterID != actor.ID {
		return s, Order{}, &TableLockedError{TableNumber: table.Number, Owner: ownerName(s, table.AssignedWaiterID)}
	}

	now := e.Now()
	order := Order{
		ID:        e.newID(),
		CreatedAt: now,
	}
	existing := s.activeOrderIndexForTable(table.ID)
	if existing >= 0 {
		prev := s.Orders[existing]
		if prev.Status != enum.OrderStatusOpen {
			return s, Order{}, ErrActiveOrderExists
		}
		order.ID = prev.ID
		order.CreatedAt = prev.CreatedAt
	}

	totals := ComputeTotals(ws.Cart, e.taxRate)
	items := make([]OrderItem, 0, len(ws.Cart))
	for _, line := range ws.Cart {
		items = append(items, OrderItem{
			ID:                  e.newID(),
			MenuItem:            line.MenuItem,
			Quantity:            line.Quantity,
			Modifiers:           append([]Modifier(nil), line.Modifiers...),
			SpecialInstructions: line.SpecialInstructions,
			Status:              enum.OrderItemStatusPending,
			AddedAt:             now,
		})
	}
	order.TableID = table.ID
	order.TableNumber = table.Number
	order.Items = items
	order.Status = enum.OrderStatusPending
	order.Subtotal = totals.Subtotal
	order.Tax = totals.Tax
	order.Discount = decimal.Zero
	order.Total = totals.Subtotal.Add(totals.Tax).Sub(order.Discount)
	order.Tip = decimal.Zero
	order.ServedBy = actor.Name
	order.WaiterID = actor.ID
	order.UpdatedAt = now

	next := s.clone()
	if existing >= 0 {
		next.Orders[existing] = order
	} else {
		next.Orders = append(next.Orders, order)
	}

	if table.AssignedWaiterID == "" {
		table.AssignedWaiterID = actor.ID
	}
	table.Status = enum.TableStatusWaitingForFood
	next.Tables[ti] = table

	ws.CurrentOrderID = order.ID
	ws.Cart = nil
	next.Workspaces[actorID] = ws

	e.notify(&next, enum.NotificationOrderNew,
		fmt.Sprintf("New Order #%s for Table %d", shortID(order.ID), order.TableNumber),
		enum.RoleChef, "", &NotificationData{OrderID: order.ID, TableNumber: order.TableNumber})
	return next, order, nil
}

func sameModifiers(a, b []Modifier) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name || !a[i].Price.Equal(b[i].Price) {
			return false
		}
	}
	return true
}
