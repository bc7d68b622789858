package pos

import (
	"time"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Modifier is a priced add-on selectable for a menu item.
type Modifier struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuItem is immutable catalog data. Orders copy it at submission time.
type MenuItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	IsAvailable     bool            `json:"is_available"`
	PreparationTime int             `json:"preparation_time,omitempty"`
	Modifiers       []Modifier      `json:"modifiers,omitempty"`
}

// Category groups menu items for browsing.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// Table is a physical table. AssignedWaiterID is set iff Status is not available.
type Table struct {
	ID               string `json:"id"`
	Number           int    `json:"number"`
	Capacity         int    `json:"capacity"`
	Status           string `json:"status"`
	AssignedWaiterID string `json:"assigned_waiter_id,omitempty"`
}

// CartItem is one line of a waiter's in-progress selection.
type CartItem struct {
	MenuItem            MenuItem   `json:"menu_item"`
	Quantity            int        `json:"quantity"`
	Modifiers           []Modifier `json:"modifiers"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
}

// UnitPrice is the item price plus all selected modifier prices.
func (c CartItem) UnitPrice() decimal.Decimal {
	return unitPrice(c.MenuItem, c.Modifiers)
}

// OrderItem is a cart line frozen into an order.
type OrderItem struct {
	ID                  string     `json:"id"`
	MenuItem            MenuItem   `json:"menu_item"`
	Quantity            int        `json:"quantity"`
	Modifiers           []Modifier `json:"modifiers"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	Status              string     `json:"status"`
	Unavailable         bool       `json:"unavailable,omitempty"`
	AddedAt             time.Time  `json:"added_at"`
}

// Order is created once per send-to-kitchen and then replaced field by field.
// Subtotal + Tax - Discount = Total; Tip is kept outside Total.
type Order struct {
	ID            string          `json:"id"`
	TableID       string          `json:"table_id"`
	TableNumber   int             `json:"table_number"`
	Items         []OrderItem     `json:"items"`
	Status        string          `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Tip           decimal.Decimal `json:"tip"`
	ServedBy      string          `json:"served_by"`
	WaiterID      string          `json:"waiter_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	AcceptedAt    *time.Time      `json:"accepted_at,omitempty"`
	ReadyAt       *time.Time      `json:"ready_at,omitempty"`
	LateFlaggedAt *time.Time      `json:"late_flagged_at,omitempty"`
}

// IsActive reports whether the order still holds its table.
func (o Order) IsActive() bool {
	return !enum.IsTerminalOrderStatus(o.Status)
}

// Attendance is the first-login record for one calendar day.
type Attendance struct {
	Date        string    `json:"date"`
	Status      string    `json:"status"`
	FirstLogin  time.Time `json:"first_login"`
	LateMinutes int       `json:"late_minutes"`
}

// Staff is a roster member. Pin holds a bcrypt hash, never the raw PIN.
type Staff struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Role                string      `json:"role"`
	Pin                 string      `json:"pin"`
	IsOnline            bool        `json:"is_online"`
	CurrentSessionStart *time.Time  `json:"current_session_start,omitempty"`
	LastLogin           *time.Time  `json:"last_login,omitempty"`
	DailyOnlineMinutes  int         `json:"daily_online_minutes"`
	Attendance          *Attendance `json:"attendance,omitempty"`
}

// NotificationData links a notification back to the order that produced it.
type NotificationData struct {
	OrderID     string `json:"order_id,omitempty"`
	TableNumber int    `json:"table_number,omitempty"`
}

// Notification is addressed by role, by staff id, both, or neither (broadcast).
type Notification struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Message       string            `json:"message"`
	CreatedAt     time.Time         `json:"created_at"`
	Read          bool              `json:"read"`
	RecipientRole string            `json:"recipient_role,omitempty"`
	RecipientID   string            `json:"recipient_id,omitempty"`
	Data          *NotificationData `json:"data,omitempty"`
}

// Workspace is one staff member's active context: the selected table,
// the order loaded for it and the cart being built.
type Workspace struct {
	SelectedTableID  string     `json:"selected_table_id,omitempty"`
	CurrentOrderID   string     `json:"current_order_id,omitempty"`
	Cart             []CartItem `json:"cart"`
	ActiveView       string     `json:"active_view"`
	SelectedCategory string     `json:"selected_category,omitempty"`
}

// State is the whole snapshot. Transitions never modify a State in place;
// they return a new one that shares untouched data with the old.
type State struct {
	Tables        []Table              `json:"tables"`
	Orders        []Order              `json:"orders"`
	Staff         []Staff              `json:"staff"`
	Notifications []Notification       `json:"notifications"`
	Workspaces    map[string]Workspace `json:"workspaces"`
}

// NewState builds the startup snapshot from a table layout and a roster.
func NewState(tables []Table, staff []Staff) State {
	s := State{
		Tables:        make([]Table, len(tables)),
		Orders:        []Order{},
		Staff:         make([]Staff, len(staff)),
		Notifications: []Notification{},
		Workspaces:    map[string]Workspace{},
	}
	copy(s.Tables, tables)
	copy(s.Staff, staff)
	for i := range s.Tables {
		if s.Tables[i].Status == "" {
			s.Tables[i].Status = enum.TableStatusAvailable
		}
	}
	return s
}

// clone copies the top-level collections so the caller may replace elements.
// Nested slices (order items, carts) are still shared and must be copied
// before they are modified.
func (s State) clone() State {
	next := State{
		Tables:        append([]Table(nil), s.Tables...),
		Orders:        append([]Order(nil), s.Orders...),
		Staff:         append([]Staff(nil), s.Staff...),
		Notifications: append([]Notification(nil), s.Notifications...),
		Workspaces:    make(map[string]Workspace, len(s.Workspaces)),
	}
	for k, v := range s.Workspaces {
		next.Workspaces[k] = v
	}
	return next
}

func (s State) tableIndex(id string) int {
	for i := range s.Tables {
		if s.Tables[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) orderIndex(id string) int {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) staffIndex(id string) int {
	for i := range s.Staff {
		if s.Staff[i].ID == id {
			return i
		}
	}
	return -1
}

// Table returns the table with the given id.
func (s State) Table(id string) (Table, bool) {
	if i := s.tableIndex(id); i >= 0 {
		return s.Tables[i], true
	}
	return Table{}, false
}

// Order returns the order with the given id.
func (s State) Order(id string) (Order, bool) {
	if i := s.orderIndex(id); i >= 0 {
		return s.Orders[i], true
	}
	return Order{}, false
}

// StaffMember returns the roster entry with the given id.
func (s State) StaffMember(id string) (Staff, bool) {
	if i := s.staffIndex(id); i >= 0 {
		return s.Staff[i], true
	}
	return Staff{}, false
}

// Workspace returns the active context of a staff member. A staff member
// without one gets an empty workspace on the tables view.
func (s State) Workspace(staffID string) Workspace {
	if ws, ok := s.Workspaces[staffID]; ok {
		return ws
	}
	return Workspace{ActiveView: enum.ViewTables}
}

// ActiveOrderForTable returns the table's non-terminal order, if any.
func (s State) ActiveOrderForTable(tableID string) (Order, bool) {
	for _, o := range s.Orders {
		if o.TableID == tableID && o.IsActive() {
			return o, true
		}
	}
	return Order{}, false
}

func (s State) activeOrderIndexForTable(tableID string) int {
	for i := range s.Orders {
		if s.Orders[i].TableID == tableID && s.Orders[i].IsActive() {
			return i
		}
	}
	return -1
}
