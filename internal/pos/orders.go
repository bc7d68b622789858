package pos

import (
	"fmt"
	"time"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Payment is what the cashier enters when settling an order.
type Payment struct {
	Method         string
	AmountReceived decimal.Decimal
	Tip            decimal.Decimal
}

// Receipt is the outcome of a successful payment.
type Receipt struct {
	Order  Order           `json:"order"`
	Change decimal.Decimal `json:"change"`
}

// AcceptOrder moves a pending order to accepted and tells its waiter.
func (e *Engine) AcceptOrder(s State, actorID, orderID string) (State, error) {
	return e.kitchenStep(s, actorID, orderID, OpAcceptOrder, enum.OrderStatusPending,
		func(o *Order, now time.Time) (string, string) {
			o.Status = enum.OrderStatusAccepted
			o.AcceptedAt = &now
			return enum.NotificationSystem, fmt.Sprintf("Order #%s Accepted by Kitchen", shortID(o.ID))
		})
}

// StartOrder moves an accepted order to in-progress; every item starts preparing.
func (e *Engine) StartOrder(s State, actorID, orderID string) (State, error) {
	return e.kitchenStep(s, actorID, orderID, OpStartOrder, enum.OrderStatusAccepted,
		func(o *Order, _ time.Time) (string, string) {
			o.Status = enum.OrderStatusInProgress
			o.Items = withItemStatus(o.Items, enum.OrderItemStatusPreparing)
			return enum.NotificationSystem, fmt.Sprintf("Order #%s is In Progress", shortID(o.ID))
		})
}

// MarkOrderReady moves an in-progress order to ready. Items become ready
// and the table is reserved for pickup.
func (e *Engine) MarkOrderReady(s State, actorID, orderID string) (State, error) {
	next, err := e.kitchenStep(s, actorID, orderID, OpMarkOrderReady, enum.OrderStatusInProgress,
		func(o *Order, now time.Time) (string, string) {
			o.Status = enum.OrderStatusReady
			o.ReadyAt = &now
			o.Items = withItemStatus(o.Items, enum.OrderItemStatusReady)
			return enum.NotificationOrderReady,
				fmt.Sprintf("Order #%s for Table %d is Ready!", shortID(o.ID), o.TableNumber)
		})
	if err != nil {
		return s, err
	}
	if o, ok := next.Order(orderID); ok && o.Status == enum.OrderStatusReady {
		setTableStatusByID(&next, o.TableID, enum.TableStatusReserved)
	}
	return next, nil
}

// kitchenStep runs one chef transition: role check, lookup, from-status
// check, then apply and a notification to the order's waiter. A missing
// order returns s untouched.
func (e *Engine) kitchenStep(s State, actorID, orderID string, op Operation, from string,
	apply func(o *Order, now time.Time) (typ, message string)) (State, error) {
	actor, err := e.actor(s, actorID)
	if err != nil {
		return s, err
	}
	if !Allowed(actor.Role, op) {
		return s, ErrUnauthorized
	}
	oi := s.orderIndex(orderID)
	if oi < 0 {
		return s, nil
	}
	o := s.Orders[oi]
	if o.Status != from {
		return s, fmt.Errorf("%s %s order: %w", op, o.Status, ErrInvalidTransition)
	}

	now := e.Now()
	typ, msg := apply(&o, now)
	o.UpdatedAt = now

	next := s.clone()
	next.Orders[oi] = o
	e.notifyWaiter(&next, o, typ, msg)
	return next, nil
}

// MarkItemUnavailable flags one item of a kitchen order as unavailable.
// The flag is never cleared, and flagging an item twice changes nothing.
// The order's status is left alone.
func (e *Engine) MarkItemUnavailable(s State, actorID, orderID, itemID string) (State, error) {
	actor, err := e.actor(s, actorID)
	if err != nil {
		return s, err
	}
	if !Allowed(actor.Role, OpMarkItemUnavail) {
		return s, ErrUnauthorized
	}
	oi := s.orderIndex(orderID)
	if oi < 0 {
		return s, nil
	}
	o := s.Orders[oi]
	ii := -1
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			ii = i
			break
		}
	}
	if ii < 0 || o.Items[ii].Unavailable {
		return s, nil
	}
	switch o.Status {
	case enum.OrderStatusPending, enum.OrderStatusAccepted, enum.OrderStatusInProgress:
	default:
		return s, fmt.Errorf("mark item unavailable on %s order: %w", o.Status, ErrInvalidTransition)
	}

	items := append([]OrderItem(nil), o.Items...)
	items[ii].Unavailable = true
	o.Items = items
	o.UpdatedAt = e.Now()

	next := s.clone()
	next.Orders[oi] = o
	e.notifyWaiter(&next, o, enum.NotificationSystem,
		fmt.Sprintf("Item Unavailable: %s (Table %d)", items[ii].MenuItem.Name, o.TableNumber))
	return next, nil
}

// MarkOrderServed records the pickup of a ready order. Only the waiter who
// placed it, a manager, an admin or a cashier may do this. Items become
// served, the table goes in-service and the order is loaded into the
// actor's workspace on the payment view.
func (e *Engine) MarkOrderServed(s State, actorID, orderID string) (State, error) {
	actor, err := e.actor(s, actorID)
	if err != nil {
		return s, err
	}
	oi := s.orderIndex(orderID)
	if oi < 0 {
		return s, nil
	}
	o := s.Orders[oi]
	if !CanHandleOrder(actor, o, OpServeOrder) {
		return s, ErrUnauthorized
	}
	if o.Status != enum.OrderStatusReady {
		return s, fmt.Errorf("serve %s order: %w", o.Status, ErrInvalidTransition)
	}

	o.Items = withItemStatus(o.Items, enum.OrderItemStatusServed)
	o.UpdatedAt = e.Now()

	next := s.clone()
	next.Orders[oi] = o
	setTableStatusByID(&next, o.TableID, enum.TableStatusInService)

	ws := next.Workspace(actor.ID)
	ws.SelectedTableID = o.TableID
	ws.CurrentOrderID = o.ID
	ws.Cart = nil
	ws.ActiveView = enum.ViewPayment
	next.Workspaces[actor.ID] = ws
	return next, nil
}

// ProcessPayment settles the order loaded in the actor's workspace. The
// order closes and its table moves to cleaning, still held by its waiter
// until MarkTableDone. Cash payments must cover total plus tip and get
// change back; card and mobile are taken as exact.
func (e *Engine) ProcessPayment(s State, actorID string, p Payment) (State, Receipt, error) {
	actor, err := e.actor(s, actorID)
	if err != nil {
		return s, Receipt{}, err
	}
	ws := s.Workspace(actor.ID)
	oi := s.orderIndex(ws.CurrentOrderID)
	if ws.CurrentOrderID == "" || oi < 0 {
		return s, Receipt{}, ErrNoActiveOrder
	}
	o := s.Orders[oi]
	if !CanHandleOrder(actor, o, OpProcessPayment) {
		return s, Receipt{}, ErrUnauthorized
	}
	if o.Status != enum.OrderStatusReady {
		return s, Receipt{}, fmt.Errorf("pay %s order: %w", o.Status, ErrInvalidTransition)
	}
	if !enum.IsPaymentMethod(p.Method) || p.Tip.IsNegative() {
		return s, Receipt{}, ErrInvalidPayment
	}

	due := o.Total.Add(p.Tip)
	change := decimal.Zero
	if p.Method == enum.PaymentMethodCash {
		if p.AmountReceived.LessThan(due) {
			return s, Receipt{}, ErrInsufficientAmount
		}
		change = p.AmountReceived.Sub(due)
	}

	o.Status = enum.OrderStatusClosed
	o.PaymentMethod = p.Method
	o.Tip = p.Tip
	o.UpdatedAt = e.Now()

	next := s.clone()
	next.Orders[oi] = o
	setTableStatusByID(&next, o.TableID, enum.TableStatusCleaning)

	ws.SelectedTableID = ""
	ws.CurrentOrderID = ""
	ws.Cart = nil
	ws.ActiveView = enum.ViewTables
	next.Workspaces[actor.ID] = ws
	return next, Receipt{Order: o, Change: change}, nil
}

// CancelOrder voids a non-terminal order. The table goes back to assigned
// and stays held by its waiter, who is notified.
func (e *Engine) CancelOrder(s State, actorID, orderID string) (State, error) {
	actor, err := e.actor(s, actorID)
	if err != nil {
		return s, err
	}
	if !Allowed(actor.Role, OpCancelOrder) {
		return s, ErrUnauthorized
	}
	oi := s.orderIndex(orderID)
	if oi < 0 {
		return s, nil
	}
	o := s.Orders[oi]
	if !o.IsActive() {
		return s, fmt.Errorf("cancel %s order: %w", o.Status, ErrInvalidTransition)
	}

	o.Status = enum.OrderStatusCancelled
	o.UpdatedAt = e.Now()

	next := s.clone()
	next.Orders[oi] = o
	if ti := next.tableIndex(o.TableID); ti >= 0 && next.Tables[ti].Status != enum.TableStatusAvailable {
		setTableStatus(&next, ti, enum.TableStatusAssigned)
	}
	for id, ws := range next.Workspaces {
		if ws.CurrentOrderID == o.ID {
			ws.CurrentOrderID = ""
			next.Workspaces[id] = ws
		}
	}
	e.notifyWaiter(&next, o, enum.NotificationSystem,
		fmt.Sprintf("Order #%s for Table %d was Cancelled by %s", shortID(o.ID), o.TableNumber, actor.Name))
	return next, nil
}

// FlagLateOrders marks kitchen orders that have waited longer than the late
// threshold and tells the managers. Each order is flagged at most once.
func (e *Engine) FlagLateOrders(s State) State {
	now := e.Now()
	var next *State
	for i, o := range s.Orders {
		if o.LateFlaggedAt != nil || !isKitchenStatus(o.Status) {
			continue
		}
		waited := now.Sub(o.CreatedAt)
		if waited <= e.lateAfter {
			continue
		}
		if next == nil {
			c := s.clone()
			next = &c
		}
		flagged := now
		o.LateFlaggedAt = &flagged
		next.Orders[i] = o
		e.notify(next, enum.NotificationOrderLate,
			fmt.Sprintf("Order #%s for Table %d is Late (%dm)", shortID(o.ID), o.TableNumber, int(waited.Minutes())),
			enum.RoleManager, "", &NotificationData{OrderID: o.ID, TableNumber: o.TableNumber})
	}
	if next == nil {
		return s
	}
	return *next
}

// notifyWaiter addresses a notification to the staff member who placed o.
func (e *Engine) notifyWaiter(next *State, o Order, typ, message string) {
	role := enum.RoleWaiter
	if st, ok := next.StaffMember(o.WaiterID); ok {
		role = st.Role
	}
	e.notify(next, typ, message, role, o.WaiterID,
		&NotificationData{OrderID: o.ID, TableNumber: o.TableNumber})
}

func withItemStatus(items []OrderItem, status string) []OrderItem {
	out := make([]OrderItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Status = status
	}
	return out
}

func isKitchenStatus(status string) bool {
	switch status {
	case enum.OrderStatusPending, enum.OrderStatusAccepted, enum.OrderStatusInProgress:
		return true
	}
	return false
}
