package pos

import (
	"testing"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		role string
		op   Operation
		want bool
	}{
		{enum.RoleWaiter, OpPlaceOrder, true},
		{enum.RoleChef, OpPlaceOrder, false},
		{enum.RoleChef, OpAcceptOrder, true},
		{enum.RoleAdmin, OpMarkOrderReady, true},
		{enum.RoleManager, OpStartOrder, false},
		{enum.RoleCashier, OpProcessPayment, true},
		{enum.RoleChef, OpProcessPayment, false},
		{enum.RoleWaiter, OpCancelOrder, false},
		{enum.RoleManager, OpCancelOrder, true},
		{enum.RoleCashier, OpManageStaff, false},
		{"", OpViewRevenue, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, Allowed(tt.role, tt.op), "%s %s", tt.role, tt.op)
	}
}

func TestCanHandleOrder(t *testing.T) {
	o := Order{WaiterID: "w1"}
	assert.True(t, CanHandleOrder(Staff{ID: "w1", Role: enum.RoleWaiter}, o, OpServeOrder))
	assert.False(t, CanHandleOrder(Staff{ID: "w2", Role: enum.RoleWaiter}, o, OpServeOrder))
	assert.True(t, CanHandleOrder(Staff{ID: "k1", Role: enum.RoleCashier}, o, OpProcessPayment))
	assert.False(t, CanHandleOrder(Staff{ID: "c1", Role: enum.RoleChef}, o, OpProcessPayment))
}
