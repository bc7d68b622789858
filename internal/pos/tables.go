package pos

import "github.com/cboy-pos/api/internal/enum"

// SelectTable makes tableID the actor's selected table.
//
// A waiter selecting an available table locks it: the table becomes
// assigned to them. A waiter selecting a table locked by someone else gets
// a *TableLockedError and nothing changes. Other roles bypass locking.
// The table's active order, if any, is loaded into the actor's workspace;
// only an open order repopulates the cart.
func (e *Engine) SelectTable(s State, actorID, tableID string) (State, error) {
	actor, err := e.actor(s, actorID)
	if err != nil {
		return s, err
	}
	ti := s.tableIndex(tableID)
	if ti < 0 {
		return s, nil
	}
	table := s.Tables[ti]

	next := s.clone()
	if actor.Role == enum.RoleWaiter {
		switch {
		case table.Status == enum.TableStatusAvailable:
			table.Status = enum.TableStatusAssigned
			table.AssignedWaiterID = actor.ID
			next.Tables[ti] = table
		case table.AssignedWaiterID != actor.ID:
			return s, &TableLockedError{
				TableNumber: table.Number,
				Owner:       ownerName(s, table.AssignedWaiterID),
			}
		}
	}

	ws := next.Workspace(actor.ID)
	ws.SelectedTableID = table.ID
	ws.ActiveView = enum.ViewMenu
	ws.CurrentOrderID = ""
	ws.Cart = nil
	if o, ok := next.ActiveOrderForTable(table.ID); ok {
		ws.CurrentOrderID = o.ID
		if o.Status == enum.OrderStatusOpen {
			ws.Cart = cartFromOrder(o)
		}
	}
	next.Workspaces[actor.ID] = ws
	return next, nil
}

// UpdateTableStatus sets a table's status directly. Moving to available
// clears the assignment and is reserved to admins and managers; waiters
// may only retag tables they hold. An available table can only leave
// available through SelectTable, which records who holds it, and a table
// with an active order is released through MarkTableDone instead.
func (e *Engine) UpdateTableStatus(s State, actorID, tableID, status string) (State, error) {
	if !enum.IsTableStatus(status) {
		return s, ErrInvalidStatus
	}
	actor, err := e.actor(s, actorID)
	if err != nil {
		return s, err
	}
	ti := s.tableIndex(tableID)
	if ti < 0 {
		return s, nil
	}
	table := s.Tables[ti]

	if !Allowed(actor.Role, OpUpdateTableStatus) {
		return s, ErrUnauthorized
	}
	if status == enum.TableStatusAvailable && !isSupervisor(actor.Role) {
		return s, ErrUnauthorized
	}
	if actor.Role == enum.RoleWaiter && table.AssignedWaiterID != actor.ID {
		return s, ErrUnauthorized
	}
	if table.Status == enum.TableStatusAvailable && status != enum.TableStatusAvailable {
		return s, ErrInvalidTransition
	}
	if status == enum.TableStatusAvailable && s.activeOrderIndexForTable(tableID) >= 0 {
		return s, ErrActiveOrderExists
	}

	next := s.clone()
	setTableStatus(&next, ti, status)
	if status == enum.TableStatusAvailable {
		releaseSelections(&next, tableID)
	}
	return next, nil
}

// MarkTableDone releases a table: its active order is closed and the table
// returns to available with no assignment. Only admins, managers and the
// waiter holding the table may do this. It is the only way a locked table
// becomes available again in the normal flow; payment leaves it cleaning.
func (e *Engine) MarkTableDone(s State, actorID, tableID string) (State, error) {
	actor, err := e.actor(s, actorID)
	if err != nil {
		return s, err
	}
	ti := s.tableIndex(tableID)
	if ti < 0 {
		return s, nil
	}
	if !CanReleaseTable(actor, s.Tables[ti]) {
		return s, ErrUnauthorized
	}

	next := s.clone()
	if oi := next.activeOrderIndexForTable(tableID); oi >= 0 {
		o := next.Orders[oi]
		o.Status = enum.OrderStatusClosed
		o.UpdatedAt = e.Now()
		next.Orders[oi] = o
	}
	setTableStatus(&next, ti, enum.TableStatusAvailable)
	releaseSelections(&next, tableID)
	return next, nil
}

// setTableStatus writes status into next.Tables[ti]. Available clears the
// assignment; every other status keeps it.
func setTableStatus(next *State, ti int, status string) {
	t := next.Tables[ti]
	t.Status = status
	if status == enum.TableStatusAvailable {
		t.AssignedWaiterID = ""
	}
	next.Tables[ti] = t
}

// setTableStatusByID is setTableStatus for callers holding a table id.
// Unknown ids and available tables are left alone: an available table has
// no holder to carry the new status.
func setTableStatusByID(next *State, tableID, status string) {
	if ti := next.tableIndex(tableID); ti >= 0 && next.Tables[ti].Status != enum.TableStatusAvailable {
		setTableStatus(next, ti, status)
	}
}

// releaseSelections drops tableID from every workspace that had it selected.
func releaseSelections(next *State, tableID string) {
	for id, ws := range next.Workspaces {
		if ws.SelectedTableID != tableID {
			continue
		}
		ws.SelectedTableID = ""
		ws.CurrentOrderID = ""
		ws.Cart = nil
		next.Workspaces[id] = ws
	}
}

func ownerName(s State, staffID string) string {
	if st, ok := s.StaffMember(staffID); ok && staffID != "" {
		return st.Name
	}
	return unknownOwner
}

func cartFromOrder(o Order) []CartItem {
	cart := make([]CartItem, 0, len(o.Items))
	for _, it := range o.Items {
		cart = append(cart, CartItem{
			MenuItem:            it.MenuItem,
			Quantity:            it.Quantity,
			Modifiers:           it.Modifiers,
			SpecialInstructions: it.SpecialInstructions,
		})
	}
	return cart
}
