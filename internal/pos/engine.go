package pos

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by transitions. A non-nil error always means the
// returned State is the input State.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidStatus      = errors.New("invalid table status")
	ErrUnknownStaff       = errors.New("staff not found")
	ErrNoTableSelected    = errors.New("no table selected")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrActiveOrderExists  = errors.New("table already has an active order")
	ErrNoActiveOrder      = errors.New("no active order")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrItemUnavailable    = errors.New("menu item is not available")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrInsufficientAmount = errors.New("amount received is less than amount due")
	ErrInvalidRole        = errors.New("invalid role")
	ErrDuplicateStaff     = errors.New("staff id already exists")
	ErrSelfRemoval        = errors.New("cannot remove the acting staff member")
	ErrInvalidStaff       = errors.New("staff name and pin are required")
)

// unknownOwner is reported when a locked table's waiter is not in the roster.
const unknownOwner = "another waiter"

// TableLockedError is returned when a waiter selects a table held by someone else.
type TableLockedError struct {
	TableNumber int
	Owner       string
}

func (e *TableLockedError) Error() string {
	return fmt.Sprintf("table %d is locked by %s", e.TableNumber, e.Owner)
}

// DefaultCutoff is the attendance threshold used when none is configured.
const DefaultCutoff = 6 * time.Hour

// DefaultTaxRate is applied when the engine is built without one.
var DefaultTaxRate = decimal.RequireFromString("0.08")

// Config holds the fixed rules of the engine.
type Config struct {
	TaxRate decimal.Decimal

	// Cutoff is the daily attendance threshold as an offset from midnight
	// in Location. Nil selects 06:00.
	Cutoff   *time.Duration
	Location *time.Location

	// LateAfter is how long a kitchen order may wait before it is flagged late.
	LateAfter time.Duration

	// Clock and NewID are injectable for deterministic tests.
	Clock func() time.Time
	NewID func() string
}

// Engine applies transitions to State values. It holds no state of its own.
type Engine struct {
	taxRate   decimal.Decimal
	cutoff    time.Duration
	loc       *time.Location
	lateAfter time.Duration
	now       func() time.Time
	newID     func() string
}

// NewEngine creates an Engine, filling unset config fields with defaults:
// 8% tax, 06:00 cutoff in local time, 20 minute late threshold.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		taxRate:   cfg.TaxRate,
		cutoff:    DefaultCutoff,
		loc:       cfg.Location,
		lateAfter: cfg.LateAfter,
		now:       cfg.Clock,
		newID:     cfg.NewID,
	}
	if e.taxRate.IsZero() {
		e.taxRate = DefaultTaxRate
	}
	if cfg.Cutoff != nil {
		e.cutoff = *cfg.Cutoff
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.lateAfter <= 0 {
		e.lateAfter = 20 * time.Minute
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// TaxRate returns the rate used by ComputeTotals calls made through the engine.
func (e *Engine) TaxRate() decimal.Decimal {
	return e.taxRate
}

// Now returns the engine clock in the engine's location.
func (e *Engine) Now() time.Time {
	return e.now().In(e.loc)
}

func (e *Engine) actor(s State, staffID string) (Staff, error) {
	st, ok := s.StaffMember(staffID)
	if !ok {
		return Staff{}, ErrUnknownStaff
	}
	return st, nil
}

// shortID is the last four characters of an id, used in messages.
func shortID(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[len(id)-4:]
}
