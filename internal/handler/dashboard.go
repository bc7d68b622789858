package handler

import (
	"net/http"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DashboardHandler serves the summary screen.
type DashboardHandler struct {
	pos     POS
	printer *message.Printer
	unit    currency.Unit
}

// NewDashboardHandler creates a new DashboardHandler. Amounts are also
// rendered for display in unit, formatted for lang.
func NewDashboardHandler(p POS, lang language.Tag, unit currency.Unit) *DashboardHandler {
	return &DashboardHandler{pos: p, printer: message.NewPrinter(lang), unit: unit}
}

// RegisterRoutes registers dashboard endpoints on the given Chi router.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Get)
}

// --- Request / Response types ---

type moneyResponse struct {
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

type dashboardResponse struct {
	Scope          string         `json:"scope"`
	DailyOrders    int            `json:"daily_orders"`
	MonthlyOrders  int            `json:"monthly_orders"`
	DailyRevenue   moneyResponse  `json:"daily_revenue"`
	MonthlyRevenue moneyResponse  `json:"monthly_revenue"`
	TodayRevenue   *moneyResponse `json:"today_revenue,omitempty"`
	Tables         map[string]int `json:"tables"`
	ActiveOrders   int            `json:"active_orders"`
	StaffOnline    []rosterEntry  `json:"staff_online,omitempty"`
	Unread         int            `json:"unread_notifications"`
}

// --- Handlers ---

// Get handles GET /dashboard. Waiters see figures for their own orders;
// other roles see the whole restaurant, and managers and admins also get
// today's takings and who is online.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := actorID(w, r)
	if !ok {
		return
	}
	s, ok := snapshot(w, r, h.pos)
	if !ok {
		return
	}
	st, found := s.StaffMember(id)
	if !found {
		writePOSError(w, pos.ErrUnknownStaff)
		return
	}
	now := h.pos.Engine().Now()

	resp := dashboardResponse{
		Scope:  "own",
		Tables: pos.TableStatusCounts(s.Tables),
		Unread: pos.UnreadCount(s.Notifications, st),
	}
	waiterID := st.ID
	if pos.Allowed(st.Role, pos.OpViewRevenue) {
		waiterID = ""
		today := h.money(pos.TodayRevenue(s.Orders, now))
		resp.TodayRevenue = &today
		for _, m := range s.Staff {
			if m.IsOnline {
				resp.StaffOnline = append(resp.StaffOnline, rosterEntry{ID: m.ID, Name: m.Name, Role: m.Role})
			}
		}
	} else if st.Role != enum.RoleWaiter {
		waiterID = ""
	}

	if waiterID == "" {
		resp.Scope = "all"
	}

	stats := pos.ComputeOrderStats(s.Orders, waiterID, now)
	resp.DailyOrders = stats.DailyOrders
	resp.MonthlyOrders = stats.MonthlyOrders
	resp.DailyRevenue = h.money(stats.DailyRevenue)
	resp.MonthlyRevenue = h.money(stats.MonthlyRevenue)

	for _, o := range s.Orders {
		if o.IsActive() && (waiterID == "" || o.WaiterID == waiterID) {
			resp.ActiveOrders++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// money pairs an exact amount with its display form. The float is used
// for display only.
func (h *DashboardHandler) money(d decimal.Decimal) moneyResponse {
	return moneyResponse{
		Amount:  d,
		Display: h.printer.Sprint(currency.Symbol(h.unit.Amount(d.Round(2).InexactFloat64()))),
	}
}
