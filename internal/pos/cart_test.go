package pos

import (
	"testing"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name                 string
		cart                 []CartItem
		subtotal, tax, total string
	}{
		{name: "empty", cart: nil, subtotal: "0", tax: "0", total: "0"},
		{
			name:     "modifier priced per unit",
			cart:     []CartItem{{MenuItem: itemA, Quantity: 2, Modifiers: []Modifier{bacon}}},
			subtotal: "22.00", tax: "1.76", total: "23.76",
		},
		{
			name:     "plain items",
			cart:     []CartItem{{MenuItem: itemA, Quantity: 2}},
			subtotal: "20.00", tax: "1.60", total: "21.60",
		},
		{
			name: "several lines",
			cart: []CartItem{
				{MenuItem: itemA, Quantity: 1},
				{MenuItem: itemB, Quantity: 3},
			},
			subtotal: "23.5", tax: "1.88", total: "25.38",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.cart, DefaultTaxRate)
			assertDecimal(t, tt.subtotal, got.Subtotal)
			assertDecimal(t, tt.tax, got.Tax)
			assertDecimal(t, tt.total, got.Total)
		})
	}
}

func TestAddToCart_MergesMatchingLines(t *testing.T) {
	f := newFixture(t)
	s := testState()

	s, err := f.eng.AddToCart(s, "w1", itemA, 1, []Modifier{bacon}, "no onions")
	require.NoError(t, err)
	s, err = f.eng.AddToCart(s, "w1", itemA, 2, []Modifier{bacon}, "")
	require.NoError(t, err)
	s, err = f.eng.AddToCart(s, "w1", itemA, 1, nil, "")
	require.NoError(t, err)

	cart := s.Workspace("w1").Cart
	require.Len(t, cart, 2)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.Equal(t, "no onions", cart[0].SpecialInstructions)
	assert.Equal(t, 1, cart[1].Quantity)
	assert.Empty(t, s.Workspace("w2").Cart, "carts are per staff member")
}

func TestAddToCart_Rejects(t *testing.T) {
	f := newFixture(t)
	s := testState()

	_, err := f.eng.AddToCart(s, "w1", itemA, 0, nil, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	soldOut := itemB
	soldOut.IsAvailable = false
	_, err = f.eng.AddToCart(s, "w1", soldOut, 1, nil, "")
	assert.ErrorIs(t, err, ErrItemUnavailable)

	_, err = f.eng.AddToCart(s, "ghost", itemA, 1, nil, "")
	assert.ErrorIs(t, err, ErrUnknownStaff)
}

func TestCartEditing(t *testing.T) {
	f := newFixture(t)
	s := testState()
	s, _ = f.eng.AddToCart(s, "w1", itemA, 1, nil, "")
	s, _ = f.eng.AddToCart(s, "w1", itemB, 1, nil, "")
	base := s

	s, err := f.eng.UpdateQuantity(s, "w1", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Workspace("w1").Cart[1].Quantity)
	assert.Equal(t, 1, base.Workspace("w1").Cart[1].Quantity, "earlier snapshot unchanged")

	s, err = f.eng.UpdateQuantity(s, "w1", 0, 0)
	require.NoError(t, err)
	require.Len(t, s.Workspace("w1").Cart, 1)
	assert.Equal(t, "fries", s.Workspace("w1").Cart[0].MenuItem.ID)

	same, err := f.eng.RemoveFromCart(s, "w1", 7)
	require.NoError(t, err)
	assert.Equal(t, s, same)

	s, err = f.eng.ClearCart(s, "w1")
	require.NoError(t, err)
	assert.Empty(t, s.Workspace("w1").Cart)
}

func TestPlaceOrder_Preconditions(t *testing.T) {
	f := newFixture(t)
	s := testState()

	s, _ = f.eng.AddToCart(s, "w1", itemA, 1, nil, "")
	_, _, err := f.eng.PlaceOrder(s, "w1")
	assert.ErrorIs(t, err, ErrNoTableSelected)

	s2, err := f.eng.SelectTable(testState(), "w1", "t5")
	require.NoError(t, err)
	_, _, err = f.eng.PlaceOrder(s2, "w1")
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, _, err = f.eng.PlaceOrder(s2, "c1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPlaceOrder_OneActiveOrderPerTable(t *testing.T) {
	f := newFixture(t)
	s, _ := placedOrder(t, f)

	s, err := f.eng.AddToCart(s, "w1", itemB, 1, nil, "")
	require.NoError(t, err)
	got, _, err := f.eng.PlaceOrder(s, "w1")
	assert.ErrorIs(t, err, ErrActiveOrderExists)
	assert.Equal(t, s, got)
	requireInvariants(t, s)
}

func TestPlaceOrder_CopiesCatalogData(t *testing.T) {
	f := newFixture(t)
	s, o := placedOrder(t, f)

	got, _ := s.Order(o.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, itemA.Name, got.Items[0].MenuItem.Name)
	assertDecimal(t, "10", got.Items[0].MenuItem.Price)
	assert.Equal(t, enum.OrderItemStatusPending, got.Items[0].Status)
}

func TestPlaceOrder_ManagerTakesAvailableTable(t *testing.T) {
	f := newFixture(t)
	s, err := f.eng.SelectTable(testState(), "m1", "t6")
	require.NoError(t, err)
	s, err = f.eng.AddToCart(s, "m1", itemA, 1, nil, "")
	require.NoError(t, err)

	s, o, err := f.eng.PlaceOrder(s, "m1")
	require.NoError(t, err)
	table, _ := s.Table("t6")
	assert.Equal(t, "m1", table.AssignedWaiterID)
	assert.Equal(t, "m1", o.WaiterID)
	requireInvariants(t, s)
}
