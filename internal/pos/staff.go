package pos

import (
	"strings"

	"github.com/cboy-pos/api/internal/enum"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims a display name and puts it in NFC form so that
// visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// AddStaff adds a roster member. st.Pin must already be hashed. An empty
// ID is generated.
func (e *Engine) AddStaff(s State, actorID string, st Staff) (State, Staff, error) {
	if err := e.requireStaffManager(s, actorID); err != nil {
		return s, Staff{}, err
	}
	st.Name = NormalizeName(st.Name)
	if st.Name == "" || st.Pin == "" {
		return s, Staff{}, ErrInvalidStaff
	}
	if !enum.IsRole(st.Role) {
		return s, Staff{}, ErrInvalidRole
	}
	if st.ID == "" {
		st.ID = e.newID()
	}
	if s.staffIndex(st.ID) >= 0 {
		return s, Staff{}, ErrDuplicateStaff
	}

	// Session fields belong to StartSession and EndSession.
	st.IsOnline = false
	st.CurrentSessionStart = nil
	st.LastLogin = nil
	st.DailyOnlineMinutes = 0
	st.Attendance = nil

	next := s.clone()
	next.Staff = append(next.Staff, st)
	return next, st, nil
}

// UpdateStaff replaces the name, role and PIN hash of an existing member.
// Empty fields keep their current value. Session and attendance data are
// preserved. Unknown ids are ignored.
func (e *Engine) UpdateStaff(s State, actorID string, st Staff) (State, error) {
	if err := e.requireStaffManager(s, actorID); err != nil {
		return s, err
	}
	si := s.staffIndex(st.ID)
	if si < 0 {
		return s, nil
	}
	cur := s.Staff[si]
	if name := NormalizeName(st.Name); name != "" {
		cur.Name = name
	}
	if st.Role != "" {
		if !enum.IsRole(st.Role) {
			return s, ErrInvalidRole
		}
		cur.Role = st.Role
	}
	if st.Pin != "" {
		cur.Pin = st.Pin
	}

	next := s.clone()
	next.Staff[si] = cur
	return next, nil
}

// RemoveStaff drops a member and their workspace. Nobody may remove
// themselves. Tables they still hold stay locked until released by a
// manager or admin.
func (e *Engine) RemoveStaff(s State, actorID, staffID string) (State, error) {
	if err := e.requireStaffManager(s, actorID); err != nil {
		return s, err
	}
	if actorID == staffID {
		return s, ErrSelfRemoval
	}
	si := s.staffIndex(staffID)
	if si < 0 {
		return s, nil
	}

	next := s.clone()
	next.Staff = append(next.Staff[:si:si], next.Staff[si+1:]...)
	delete(next.Workspaces, staffID)
	return next, nil
}

func (e *Engine) requireStaffManager(s State, actorID string) error {
	actor, err := e.actor(s, actorID)
	if err != nil {
		return err
	}
	if !Allowed(actor.Role, OpManageStaff) {
		return ErrUnauthorized
	}
	return nil
}
