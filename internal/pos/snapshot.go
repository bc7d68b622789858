package pos

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/cboy-pos/api/internal/enum"
)

// Encode serializes a snapshot for storage.
func Encode(s State) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// Decode parses a stored snapshot. The result is not reconciled.
func Decode(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// Load decodes and reconciles a stored snapshot. Collections missing from
// the stored data are taken from initial. Empty or unreadable data yields
// initial; a decode error is logged, never returned.
func Load(data []byte, initial State) State {
	if len(data) == 0 {
		return Reconcile(initial)
	}
	s, err := Decode(data)
	if err != nil {
		log.Printf("ERROR: load snapshot, using default state: %v", err)
		return Reconcile(initial)
	}
	if s.Tables == nil {
		s.Tables = initial.Tables
	}
	if s.Orders == nil {
		s.Orders = initial.Orders
	}
	if s.Staff == nil {
		s.Staff = initial.Staff
	}
	if s.Notifications == nil {
		s.Notifications = initial.Notifications
	}
	return Reconcile(s)
}

// Reconcile repairs a snapshot after a restart. Every workspace loses its
// selected table and loaded order and lands on the dashboard when its
// staff member was online, else on the tables view. Workspaces of staff no
// longer on the roster are dropped. A table that is not available but has
// no active order is released, covering a crash between closing an order
// and freeing its table.
func Reconcile(s State) State {
	next := s.clone()
	if next.Orders == nil {
		next.Orders = []Order{}
	}
	if next.Notifications == nil {
		next.Notifications = []Notification{}
	}
	if next.Tables == nil {
		next.Tables = []Table{}
	}
	if next.Staff == nil {
		next.Staff = []Staff{}
	}

	for id, ws := range next.Workspaces {
		st, ok := next.StaffMember(id)
		if !ok {
			delete(next.Workspaces, id)
			continue
		}
		ws.SelectedTableID = ""
		ws.CurrentOrderID = ""
		ws.ActiveView = enum.ViewTables
		if st.IsOnline {
			ws.ActiveView = enum.ViewDashboard
		}
		next.Workspaces[id] = ws
	}

	for i, t := range next.Tables {
		if t.Status == enum.TableStatusAvailable {
			if t.AssignedWaiterID != "" {
				next.Tables[i].AssignedWaiterID = ""
			}
			continue
		}
		oi := next.activeOrderIndexForTable(t.ID)
		switch {
		case oi < 0:
			setTableStatus(&next, i, enum.TableStatusAvailable)
		case t.AssignedWaiterID == "":
			next.Tables[i].AssignedWaiterID = next.Orders[oi].WaiterID
		}
	}
	return next
}
