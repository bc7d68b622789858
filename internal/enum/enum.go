package enum

// ── Group A: State machines ──

const (
	TableStatusAvailable         = "available"
	TableStatusAssigned          = "assigned"
	TableStatusWaitingForFood    = "waiting-for-food"
	TableStatusInService         = "in-service"
	TableStatusOccupied          = "occupied"
	TableStatusReserved          = "reserved"
	TableStatusCleaning          = "cleaning"
	TableStatusWaitingForService = "waiting-for-service"
)

const (
	OrderStatusOpen       = "open"
	OrderStatusPending    = "pending"
	OrderStatusAccepted   = "accepted"
	OrderStatusInProgress = "in-progress"
	OrderStatusReady      = "ready"
	OrderStatusClosed     = "closed"
	OrderStatusCancelled  = "cancelled"
)

const (
	OrderItemStatusPending   = "pending"
	OrderItemStatusPreparing = "preparing"
	OrderItemStatusReady     = "ready"
	OrderItemStatusServed    = "served"
)

const (
	AttendanceLate   = "late"
	AttendanceOnTime = "on-time"
	AttendanceAbsent = "absent"
)

// ── Group B: Roles and views ──

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleWaiter  = "waiter"
	RoleChef    = "chef"
	RoleCashier = "cashier"
)

const (
	ViewTables    = "tables"
	ViewMenu      = "menu"
	ViewCart      = "cart"
	ViewPayment   = "payment"
	ViewKitchen   = "kitchen"
	ViewOrders    = "orders"
	ViewDashboard = "dashboard"
)

// ── Group C: Configurable labels ──

const (
	NotificationOrderNew   = "order_new"
	NotificationOrderReady = "order_ready"
	NotificationOrderLate  = "order_late"
	NotificationSystem     = "system"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodMobile = "mobile"
)

const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityRush   = "rush"
)

// IsTableStatus reports whether s is a known table status.
func IsTableStatus(s string) bool {
	switch s {
	case TableStatusAvailable, TableStatusAssigned, TableStatusWaitingForFood,
		TableStatusInService, TableStatusOccupied, TableStatusReserved,
		TableStatusCleaning, TableStatusWaitingForService:
		return true
	}
	return false
}

// IsRole reports whether s is a known staff role.
func IsRole(s string) bool {
	switch s {
	case RoleAdmin, RoleManager, RoleWaiter, RoleChef, RoleCashier:
		return true
	}
	return false
}

// IsPaymentMethod reports whether s is a supported payment method.
func IsPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile:
		return true
	}
	return false
}

// IsTerminalOrderStatus reports whether an order in status s no longer holds its table.
func IsTerminalOrderStatus(s string) bool {
	return s == OrderStatusClosed || s == OrderStatusCancelled
}

// IsView reports whether s is a known workspace view.
func IsView(s string) bool {
	switch s {
	case ViewTables, ViewMenu, ViewCart, ViewPayment, ViewKitchen, ViewOrders, ViewDashboard:
		return true
	}
	return false
}
