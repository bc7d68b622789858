package pos

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// OrderStats summarises orders created today and this month.
type OrderStats struct {
	DailyOrders    int             `json:"daily_orders"`
	MonthlyOrders  int             `json:"monthly_orders"`
	DailyRevenue   decimal.Decimal `json:"daily_revenue"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
}

// ComputeOrderStats counts orders and sums their totals by creation day and
// month of now. A non-empty waiterID restricts it to that waiter's orders.
func ComputeOrderStats(orders []Order, waiterID string, now time.Time) OrderStats {
	st := OrderStats{DailyRevenue: decimal.Zero, MonthlyRevenue: decimal.Zero}
	y, m, d := now.Date()
	for _, o := range orders {
		if waiterID != "" && o.WaiterID != waiterID {
			continue
		}
		c := o.CreatedAt.In(now.Location())
		cy, cm, cd := c.Date()
		if cy != y || cm != m {
			continue
		}
		st.MonthlyOrders++
		st.MonthlyRevenue = st.MonthlyRevenue.Add(o.Total)
		if cd == d {
			st.DailyOrders++
			st.DailyRevenue = st.DailyRevenue.Add(o.Total)
		}
	}
	return st
}

// TodayRevenue sums the totals of closed orders created on now's day.
func TodayRevenue(orders []Order, now time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		if o.Status == enum.OrderStatusClosed && sameDay(o.CreatedAt, now) {
			sum = sum.Add(o.Total)
		}
	}
	return sum
}

// OrderFilter narrows an order listing. Query matches the table number or
// the order id; Status matches exactly. Empty fields match everything.
type OrderFilter struct {
	Query  string
	Status string
}

// VisibleOrders returns the orders staff may see, newest first. Waiters
// only see orders they placed.
func VisibleOrders(orders []Order, staff Staff, f OrderFilter) []Order {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if staff.Role == enum.RoleWaiter && o.WaiterID != staff.ID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if q != "" && !strings.Contains(strconv.Itoa(o.TableNumber), q) &&
			!strings.Contains(strings.ToLower(o.ID), q) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// TableStatusCounts counts tables per status.
func TableStatusCounts(tables []Table) map[string]int {
	counts := make(map[string]int)
	for _, t := range tables {
		counts[t.Status]++
	}
	return counts
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
