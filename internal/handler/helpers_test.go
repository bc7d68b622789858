package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cboy-pos/api/internal/auth"
	"github.com/cboy-pos/api/internal/catalog"
	"github.com/cboy-pos/api/internal/enum"
	"github.com/cboy-pos/api/internal/handler"
	"github.com/cboy-pos/api/internal/middleware"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const testSecret = "test-secret"

// --- Fake POS ---

// fakePOS applies transitions synchronously under a mutex.
type fakePOS struct {
	mu      sync.Mutex
	eng     *pos.Engine
	state   pos.State
	actions []string
}

func (f *fakePOS) Engine() *pos.Engine { return f.eng }

func (f *fakePOS) Do(_ context.Context, action, _ string, fn func(pos.State) (pos.State, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := fn(f.state)
	if err != nil {
		return err
	}
	f.state = next
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakePOS) Snapshot(_ context.Context) (pos.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, nil
}

func (f *fakePOS) current() pos.State {
	s, _ := f.Snapshot(context.Background())
	return s
}

// --- Fixture ---

const testLayout = `
tables:
  - {id: t1, number: 1, capacity: 4}
  - {id: t2, number: 2, capacity: 2}
categories:
  - {id: mains, name: Mains}
  - {id: drinks, name: Drinks}
modifiers:
  cheese: {name: Cheese, price: "1.00"}
menu:
  - {id: burger, name: Burger, price: "12.00", category: mains, modifiers: [cheese]}
  - {id: soup, name: Soup, price: "5.00", category: mains, available: false}
  - {id: cola, name: Cola, price: "2.50", category: drinks}
`

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	pos    *fakePOS
	router http.Handler
}

func hashPin(t *testing.T, pin string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	return string(h)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := catalog.Parse([]byte(testLayout))
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}

	seq := 0
	eng := pos.NewEngine(pos.Config{
		Location: time.UTC,
		Clock:    func() time.Time { return testNow },
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%04d", seq)
		},
	})
	pin := hashPin(t, "1111")
	state := pos.NewState(cat.Tables, []pos.Staff{
		{ID: "w1", Name: "Wendy", Role: enum.RoleWaiter, Pin: pin},
		{ID: "w2", Name: "Walt", Role: enum.RoleWaiter, Pin: pin},
		{ID: "c1", Name: "Carla", Role: enum.RoleChef, Pin: pin},
		{ID: "m1", Name: "Mona", Role: enum.RoleManager, Pin: pin},
		{ID: "k1", Name: "Kai", Role: enum.RoleCashier, Pin: pin},
	})
	fp := &fakePOS{eng: eng, state: state}

	r := chi.NewRouter()
	authH := handler.NewAuthHandler(fp, testSecret)
	authH.RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))
		authH.RegisterProtectedRoutes(r)
		handler.NewTableHandler(fp).RegisterRoutes(r)
		handler.NewCartHandler(fp, cat).RegisterRoutes(r)
		handler.NewOrderHandler(fp).RegisterRoutes(r)
		handler.NewPaymentHandler(fp).RegisterRoutes(r)
		handler.NewKitchenHandler(fp).RegisterRoutes(r)
		handler.NewNotificationHandler(fp).RegisterRoutes(r)
		handler.NewMenuHandler(cat).RegisterRoutes(r)
		handler.NewWorkspaceHandler(fp).RegisterRoutes(r)
		handler.NewDashboardHandler(fp, language.English, currency.USD).RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperation(pos.OpManageStaff))
			handler.NewStaffHandler(fp).RegisterRoutes(r)
		})
	})
	return &testEnv{pos: fp, router: r}
}

// --- Request helpers ---

func tokenFor(t *testing.T, staffID, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, staffID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("marshal request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	decodeInto(t, rr, &resp)
	return resp
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

// placeOrder has w1 take table t1 and send one burger to the kitchen.
func (e *testEnv) placeOrder(t *testing.T) pos.Order {
	t.Helper()
	w1 := tokenFor(t, "w1", enum.RoleWaiter)
	expectStatus(t, e.do(t, "POST", "/tables/t1/select", w1, nil), http.StatusOK)
	expectStatus(t, e.do(t, "POST", "/cart/items", w1, map[string]interface{}{"menu_item_id": "burger", "quantity": 1}), http.StatusOK)
	rr := e.do(t, "POST", "/orders", w1, nil)
	expectStatus(t, rr, http.StatusCreated)
	var o pos.Order
	decodeInto(t, rr, &o)
	return o
}

// readyOrder walks a placed order through the kitchen.
func (e *testEnv) readyOrder(t *testing.T) pos.Order {
	t.Helper()
	o := e.placeOrder(t)
	c1 := tokenFor(t, "c1", enum.RoleChef)
	for _, step := range []string{"accept", "start", "ready"} {
		expectStatus(t, e.do(t, "POST", "/orders/"+o.ID+"/"+step, c1, nil), http.StatusOK)
	}
	ready, _ := e.pos.current().Order(o.ID)
	return ready
}
