package pos

import "github.com/cboy-pos/api/internal/enum"

// Operation names a privileged transition.
type Operation string

const (
	OpPlaceOrder        Operation = "place_order"
	OpAcceptOrder       Operation = "accept_order"
	OpStartOrder        Operation = "start_order"
	OpMarkOrderReady    Operation = "mark_order_ready"
	OpMarkItemUnavail   Operation = "mark_item_unavailable"
	OpServeOrder        Operation = "serve_order"
	OpProcessPayment    Operation = "process_payment"
	OpCancelOrder       Operation = "cancel_order"
	OpMarkTableDone     Operation = "mark_table_done"
	OpUpdateTableStatus Operation = "update_table_status"
	OpManageStaff       Operation = "manage_staff"
	OpViewRevenue       Operation = "view_revenue"
)

// capabilities is the authorization matrix. Operations that also depend on
// who owns the order or table are refined by CanHandleOrder and CanReleaseTable.
var capabilities = map[Operation][]string{
	OpPlaceOrder:        {enum.RoleWaiter, enum.RoleManager, enum.RoleAdmin},
	OpAcceptOrder:       {enum.RoleChef, enum.RoleAdmin},
	OpStartOrder:        {enum.RoleChef, enum.RoleAdmin},
	OpMarkOrderReady:    {enum.RoleChef, enum.RoleAdmin},
	OpMarkItemUnavail:   {enum.RoleChef, enum.RoleAdmin},
	OpServeOrder:        {enum.RoleWaiter, enum.RoleManager, enum.RoleAdmin, enum.RoleCashier},
	OpProcessPayment:    {enum.RoleWaiter, enum.RoleManager, enum.RoleAdmin, enum.RoleCashier},
	OpCancelOrder:       {enum.RoleManager, enum.RoleAdmin},
	OpMarkTableDone:     {enum.RoleWaiter, enum.RoleManager, enum.RoleAdmin},
	OpUpdateTableStatus: {enum.RoleWaiter, enum.RoleManager, enum.RoleAdmin},
	OpManageStaff:       {enum.RoleManager, enum.RoleAdmin},
	OpViewRevenue:       {enum.RoleManager, enum.RoleAdmin},
}

// Allowed reports whether role may perform op at all.
func Allowed(role string, op Operation) bool {
	for _, r := range capabilities[op] {
		if r == role {
			return true
		}
	}
	return false
}

// isSupervisor covers roles that override waiter ownership.
func isSupervisor(role string) bool {
	return role == enum.RoleAdmin || role == enum.RoleManager
}

// CanHandleOrder reports whether actor may serve or settle order: the
// waiter who placed it, or a manager, admin or cashier.
func CanHandleOrder(actor Staff, order Order, op Operation) bool {
	if !Allowed(actor.Role, op) {
		return false
	}
	if actor.Role == enum.RoleWaiter {
		return order.WaiterID == actor.ID
	}
	return true
}

// CanReleaseTable reports whether actor may mark table done: admin,
// manager or the waiter holding the lock.
func CanReleaseTable(actor Staff, table Table) bool {
	if !Allowed(actor.Role, OpMarkTableDone) {
		return false
	}
	return isSupervisor(actor.Role) || table.AssignedWaiterID == actor.ID
}
