package handler_test

import (
	"net/http"
	"testing"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/shopspring/decimal"
)

type receiptBody struct {
	Order          pos.Order       `json:"order"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Change         decimal.Decimal `json:"change"`
}

func TestServeAndPayCash(t *testing.T) {
	env := newTestEnv(t)
	o := env.readyOrder(t)
	w1 := tokenFor(t, "w1", enum.RoleWaiter)

	rr := env.do(t, "POST", "/orders/"+o.ID+"/serve", tokenFor(t, "w2", enum.RoleWaiter), nil)
	expectStatus(t, rr, http.StatusForbidden)

	expectStatus(t, env.do(t, "POST", "/orders/"+o.ID+"/serve", w1, nil), http.StatusOK)
	if tb, _ := env.pos.current().Table("t1"); tb.Status != enum.TableStatusInService {
		t.Errorf("table status: got %s, want in-service", tb.Status)
	}

	rr = env.do(t, "POST", "/payments", w1, map[string]string{"method": "cash", "amount_received": "10"})
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	rr = env.do(t, "POST", "/payments", w1, map[string]string{"method": "cash", "amount_received": "20"})
	expectStatus(t, rr, http.StatusOK)
	var receipt receiptBody
	decodeInto(t, rr, &receipt)
	if !receipt.Change.Equal(decimal.RequireFromString("7.04")) {
		t.Errorf("change: got %s, want 7.04", receipt.Change)
	}
	if !receipt.AmountReceived.Equal(decimal.NewFromInt(20)) {
		t.Errorf("received: got %s, want 20", receipt.AmountReceived)
	}
	if receipt.Order.Status != enum.OrderStatusClosed || receipt.Order.PaymentMethod != enum.PaymentMethodCash {
		t.Errorf("order: got %s/%s", receipt.Order.Status, receipt.Order.PaymentMethod)
	}

	s := env.pos.current()
	if tb, _ := s.Table("t1"); tb.Status != enum.TableStatusCleaning || tb.AssignedWaiterID != "w1" {
		t.Errorf("table: got %+v, want cleaning held by w1", tb)
	}
	if ws := s.Workspace("w1"); ws.CurrentOrderID != "" || ws.ActiveView != enum.ViewTables {
		t.Errorf("workspace not reset: %+v", ws)
	}
}

func TestPay_CashierByTable(t *testing.T) {
	env := newTestEnv(t)
	env.readyOrder(t)
	k1 := tokenFor(t, "k1", enum.RoleCashier)

	rr := env.do(t, "POST", "/payments", k1, map[string]string{"method": "card", "tip": "2"})
	expectStatus(t, rr, http.StatusUnprocessableEntity) // nothing loaded

	rr = env.do(t, "POST", "/payments", k1, map[string]string{"table_id": "t1", "method": "card", "tip": "2"})
	expectStatus(t, rr, http.StatusOK)
	var receipt receiptBody
	decodeInto(t, rr, &receipt)
	if !receipt.AmountDue.Equal(decimal.RequireFromString("14.96")) || !receipt.Change.IsZero() {
		t.Errorf("receipt: due %s change %s", receipt.AmountDue, receipt.Change)
	}
}

func TestPay_BadInput(t *testing.T) {
	env := newTestEnv(t)
	w1 := tokenFor(t, "w1", enum.RoleWaiter)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing method", map[string]string{}, http.StatusBadRequest},
		{"bad amount", map[string]string{"method": "cash", "amount_received": "lots"}, http.StatusBadRequest},
		{"bad tip", map[string]string{"method": "card", "tip": "?"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, "POST", "/payments", w1, tt.body), tt.want)
		})
	}
}
