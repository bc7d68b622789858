package pos

import (
	"time"

	"github.com/cboy-pos/api/internal/enum"
)

// dateLayout is how attendance dates are stored.
const dateLayout = "2006-01-02"

var defaultViews = map[string]string{
	enum.RoleAdmin:   enum.ViewDashboard,
	enum.RoleManager: enum.ViewDashboard,
	enum.RoleCashier: enum.ViewOrders,
	enum.RoleChef:    enum.ViewKitchen,
	enum.RoleWaiter:  enum.ViewTables,
}

// DefaultView is the view a role lands on after login. Unknown roles get
// the tables view.
func DefaultView(role string) string {
	if v, ok := defaultViews[role]; ok {
		return v
	}
	return enum.ViewTables
}

// StartSession marks a staff member online. The PIN must already have been
// verified by the caller.
//
// The first login of a calendar day records attendance: late when after the
// daily cutoff, with the whole minutes past it, else on time. Online minutes
// carried from a previous day are reset.
func (e *Engine) StartSession(s State, staffID string) (State, error) {
	si := s.staffIndex(staffID)
	if si < 0 {
		return s, ErrUnknownStaff
	}
	now := e.Now()
	today := now.Format(dateLayout)
	st := s.Staff[si]

	sameDay := st.Attendance != nil && st.Attendance.Date == today
	if !sameDay {
		cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc).Add(e.cutoff)
		a := &Attendance{
			Date:       today,
			Status:     enum.AttendanceOnTime,
			FirstLogin: now,
		}
		if now.After(cutoff) {
			a.Status = enum.AttendanceLate
			a.LateMinutes = int(now.Sub(cutoff) / time.Minute)
		}
		st.Attendance = a
		st.DailyOnlineMinutes = 0
	} else if st.IsOnline && st.CurrentSessionStart != nil {
		// A second login without logout closes the running session first.
		st.DailyOnlineMinutes += elapsedMinutes(*st.CurrentSessionStart, now)
	}

	start := now
	st.IsOnline = true
	st.CurrentSessionStart = &start
	st.LastLogin = &start

	next := s.clone()
	next.Staff[si] = st
	ws := next.Workspace(st.ID)
	ws.ActiveView = DefaultView(st.Role)
	next.Workspaces[st.ID] = ws
	return next, nil
}

// EndSession marks a staff member offline and adds the whole minutes of the
// running session to today's online time.
func (e *Engine) EndSession(s State, staffID string) (State, error) {
	si := s.staffIndex(staffID)
	if si < 0 {
		return s, ErrUnknownStaff
	}
	st := s.Staff[si]
	if st.CurrentSessionStart != nil {
		st.DailyOnlineMinutes += elapsedMinutes(*st.CurrentSessionStart, e.Now())
	}
	st.CurrentSessionStart = nil
	st.IsOnline = false

	next := s.clone()
	next.Staff[si] = st
	return next, nil
}

// SetActiveView switches the view shown to a staff member.
func (e *Engine) SetActiveView(s State, staffID, view string) (State, error) {
	if _, err := e.actor(s, staffID); err != nil {
		return s, err
	}
	next := s.clone()
	ws := next.Workspace(staffID)
	ws.ActiveView = view
	next.Workspaces[staffID] = ws
	return next, nil
}

// SetSelectedCategory filters the menu shown to a staff member. An empty
// category shows everything.
func (e *Engine) SetSelectedCategory(s State, staffID, category string) (State, error) {
	if _, err := e.actor(s, staffID); err != nil {
		return s, err
	}
	next := s.clone()
	ws := next.Workspace(staffID)
	ws.SelectedCategory = category
	next.Workspaces[staffID] = ws
	return next, nil
}

func elapsedMinutes(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
