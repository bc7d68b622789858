package pos

import (
	"testing"
	"time"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptOrder_UnknownIDIsNoop(t *testing.T) {
	f := newFixture(t)
	s := testState()

	got, err := f.eng.AcceptOrder(s, "c1", "missing")
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestKitchenSteps_RequireChefOrAdmin(t *testing.T) {
	f := newFixture(t)
	s, o := placedOrder(t, f)

	for _, actor := range []string{"w1", "m1", "k1"} {
		got, err := f.eng.AcceptOrder(s, actor, o.ID)
		assert.ErrorIs(t, err, ErrUnauthorized, actor)
		assert.Equal(t, s, got)
	}

	_, err := f.eng.AcceptOrder(s, "a1", o.ID)
	assert.NoError(t, err)
}

func TestKitchenSteps_EnforceOrder(t *testing.T) {
	f := newFixture(t)
	s, o := placedOrder(t, f)

	_, err := f.eng.StartOrder(s, "c1", o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.eng.MarkOrderReady(s, "c1", o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	s, err = f.eng.AcceptOrder(s, "c1", o.ID)
	require.NoError(t, err)
	_, err = f.eng.AcceptOrder(s, "c1", o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkItemUnavailable_Idempotent(t *testing.T) {
	f := newFixture(t)
	s, o := placedOrder(t, f)
	itemID := o.Items[0].ID

	once, err := f.eng.MarkItemUnavailable(s, "c1", o.ID, itemID)
	require.NoError(t, err)
	twice, err := f.eng.MarkItemUnavailable(once, "c1", o.ID, itemID)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	got, _ := twice.Order(o.ID)
	assert.True(t, got.Items[0].Unavailable)
	assert.Equal(t, enum.OrderStatusPending, got.Status)
	assert.Equal(t, "Item Unavailable: Burger (Table 5)", twice.Notifications[0].Message)
	assert.Len(t, twice.Notifications, 2)
}

func TestMarkItemUnavailable_AfterReady(t *testing.T) {
	f := newFixture(t)
	s, o := readyOrder(t, f)

	_, err := f.eng.MarkItemUnavailable(s, "c1", o.ID, o.Items[0].ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := f.eng.MarkItemUnavailable(s, "c1", o.ID, "no-such-item")
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestMarkOrderServed(t *testing.T) {
	f := newFixture(t)
	s, o := readyOrder(t, f)

	_, err := f.eng.MarkOrderServed(s, "w2", o.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.eng.MarkOrderServed(s, "c1", o.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	s, err = f.eng.MarkOrderServed(s, "k1", o.ID)
	require.NoError(t, err)
	table, _ := s.Table("t5")
	assert.Equal(t, enum.TableStatusInService, table.Status)
	assert.Equal(t, "w1", table.AssignedWaiterID)
	ws := s.Workspace("k1")
	assert.Equal(t, o.ID, ws.CurrentOrderID)
	assert.Equal(t, enum.ViewPayment, ws.ActiveView)
	got, _ := s.Order(o.ID)
	assert.Equal(t, enum.OrderItemStatusServed, got.Items[0].Status)

	s, receipt, err := f.eng.ProcessPayment(s, "k1", Payment{Method: enum.PaymentMethodCard, Tip: dec("2")})
	require.NoError(t, err)
	assertDecimal(t, "0", receipt.Change)
	assertDecimal(t, "2", receipt.Order.Tip)
	assert.Equal(t, enum.PaymentMethodCard, receipt.Order.PaymentMethod)
	assert.Equal(t, enum.ViewTables, s.Workspace("k1").ActiveView)
	requireInvariants(t, s)
}

func TestProcessPayment_Rejects(t *testing.T) {
	f := newFixture(t)

	t.Run("no order loaded", func(t *testing.T) {
		_, _, err := f.eng.ProcessPayment(testState(), "w1", Payment{Method: enum.PaymentMethodCash})
		assert.ErrorIs(t, err, ErrNoActiveOrder)
	})

	t.Run("order not ready", func(t *testing.T) {
		s, _ := placedOrder(t, f)
		_, _, err := f.eng.ProcessPayment(s, "w1", Payment{Method: enum.PaymentMethodCard})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	s, o := readyOrder(t, f)

	t.Run("short cash", func(t *testing.T) {
		got, _, err := f.eng.ProcessPayment(s, "w1", Payment{
			Method: enum.PaymentMethodCash, AmountReceived: dec("21.60"), Tip: dec("1"),
		})
		assert.ErrorIs(t, err, ErrInsufficientAmount)
		assert.Equal(t, s, got)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, _, err := f.eng.ProcessPayment(s, "w1", Payment{Method: "barter"})
		assert.ErrorIs(t, err, ErrInvalidPayment)
	})

	t.Run("other waiter", func(t *testing.T) {
		other := s.clone()
		other.Workspaces["w2"] = Workspace{CurrentOrderID: o.ID, ActiveView: enum.ViewPayment}
		_, _, err := f.eng.ProcessPayment(other, "w2", Payment{Method: enum.PaymentMethodCard})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	s, o := placedOrder(t, f)

	_, err := f.eng.CancelOrder(s, "w1", o.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	s, err = f.eng.CancelOrder(s, "m1", o.ID)
	require.NoError(t, err)
	got, _ := s.Order(o.ID)
	assert.Equal(t, enum.OrderStatusCancelled, got.Status)
	table, _ := s.Table("t5")
	assert.Equal(t, enum.TableStatusAssigned, table.Status)
	assert.Equal(t, "w1", table.AssignedWaiterID)
	assert.Empty(t, s.Workspace("w1").CurrentOrderID)
	assert.Equal(t, "w1", s.Notifications[0].RecipientID)
	requireInvariants(t, s)

	_, err = f.eng.CancelOrder(s, "m1", o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// The table can take a new order once the old one is cancelled.
	s, err = f.eng.AddToCart(s, "w1", itemB, 1, nil, "")
	require.NoError(t, err)
	s, _, err = f.eng.PlaceOrder(s, "w1")
	require.NoError(t, err)
	requireInvariants(t, s)
}

func TestFlagLateOrders(t *testing.T) {
	f := newFixture(t)
	s, o := placedOrder(t, f)

	f.advance(15 * time.Minute)
	assert.Equal(t, s, f.eng.FlagLateOrders(s))

	f.advance(6 * time.Minute)
	s = f.eng.FlagLateOrders(s)
	got, _ := s.Order(o.ID)
	require.NotNil(t, got.LateFlaggedAt)
	n := s.Notifications[0]
	assert.Equal(t, enum.NotificationOrderLate, n.Type)
	assert.Equal(t, enum.RoleManager, n.RecipientRole)
	assert.Contains(t, n.Message, "(21m)")

	f.advance(time.Hour)
	assert.Equal(t, s, f.eng.FlagLateOrders(s), "flagged once")
}

func TestNotificationsReachManagerPlacedOrders(t *testing.T) {
	f := newFixture(t)
	s, err := f.eng.SelectTable(testState(), "m1", "t6")
	require.NoError(t, err)
	s, err = f.eng.AddToCart(s, "m1", itemA, 1, nil, "")
	require.NoError(t, err)
	s, o, err := f.eng.PlaceOrder(s, "m1")
	require.NoError(t, err)

	s, err = f.eng.AcceptOrder(s, "c1", o.ID)
	require.NoError(t, err)
	mona, _ := s.StaffMember("m1")
	assert.True(t, IsTargeted(s.Notifications[0], mona))
}
