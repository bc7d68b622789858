package pos

import (
	"fmt"
	"testing"
	"time"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is an engine with a settable clock and sequential ids.
type fixture struct {
	eng *Engine
	now time.Time
	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	f.eng = NewEngine(Config{
		Location: time.UTC,
		Clock:    func() time.Time { return f.now },
		NewID: func() string {
			f.seq++
			return fmt.Sprintf("id-%04d", f.seq)
		},
	})
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func testRoster() []Staff {
	return []Staff{
		{ID: "w1", Name: "Wendy", Role: enum.RoleWaiter, Pin: "hash"},
		{ID: "w2", Name: "Walt", Role: enum.RoleWaiter, Pin: "hash"},
		{ID: "c1", Name: "Carla", Role: enum.RoleChef, Pin: "hash"},
		{ID: "m1", Name: "Mona", Role: enum.RoleManager, Pin: "hash"},
		{ID: "a1", Name: "Abe", Role: enum.RoleAdmin, Pin: "hash"},
		{ID: "k1", Name: "Kai", Role: enum.RoleCashier, Pin: "hash"},
	}
}

func testTables() []Table {
	return []Table{
		{ID: "t5", Number: 5, Capacity: 4},
		{ID: "t6", Number: 6, Capacity: 2},
	}
}

func testState() State {
	return NewState(testTables(), testRoster())
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	itemA = MenuItem{ID: "burger", Name: "Burger", Price: dec("10"), Category: "mains", IsAvailable: true}
	itemB = MenuItem{ID: "fries", Name: "Fries", Price: dec("4.5"), Category: "sides", IsAvailable: true}
	bacon = Modifier{ID: "bacon", Name: "Bacon", Price: dec("1")}
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// requireInvariants checks the table assignment rule, one active order per
// table and the order total identity.
func requireInvariants(t *testing.T, s State) {
	t.Helper()
	active := map[string]int{}
	for _, o := range s.Orders {
		if o.IsActive() {
			active[o.TableID]++
		}
		require.Truef(t, o.Subtotal.Add(o.Tax).Sub(o.Discount).Equal(o.Total),
			"order %s: %s + %s - %s != %s", o.ID, o.Subtotal, o.Tax, o.Discount, o.Total)
	}
	for _, tb := range s.Tables {
		require.Equalf(t, tb.Status == enum.TableStatusAvailable, tb.AssignedWaiterID == "",
			"table %d status %q assigned %q", tb.Number, tb.Status, tb.AssignedWaiterID)
		require.LessOrEqualf(t, active[tb.ID], 1, "table %d has %d active orders", tb.Number, active[tb.ID])
	}
}

// placedOrder runs select, add and place for waiter w1 on table t5.
func placedOrder(t *testing.T, f *fixture) (State, Order) {
	t.Helper()
	s, err := f.eng.SelectTable(testState(), "w1", "t5")
	require.NoError(t, err)
	s, err = f.eng.AddToCart(s, "w1", itemA, 2, nil, "")
	require.NoError(t, err)
	s, o, err := f.eng.PlaceOrder(s, "w1")
	require.NoError(t, err)
	return s, o
}

// readyOrder drives a placed order through the kitchen to ready.
func readyOrder(t *testing.T, f *fixture) (State, Order) {
	t.Helper()
	s, o := placedOrder(t, f)
	var err error
	s, err = f.eng.AcceptOrder(s, "c1", o.ID)
	require.NoError(t, err)
	s, err = f.eng.StartOrder(s, "c1", o.ID)
	require.NoError(t, err)
	s, err = f.eng.MarkOrderReady(s, "c1", o.ID)
	require.NoError(t, err)
	o, _ = s.Order(o.ID)
	return s, o
}
