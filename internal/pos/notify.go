package pos

// Notify prepends a notification to the log. Recipients are given by role,
// by staff id, both, or neither for a broadcast.
func (e *Engine) Notify(s State, typ, message, recipientRole, recipientID string, data *NotificationData) State {
	next := s.clone()
	e.notify(&next, typ, message, recipientRole, recipientID, data)
	return next
}

// notify is Notify for transitions that already hold a cloned State.
func (e *Engine) notify(next *State, typ, message, recipientRole, recipientID string, data *NotificationData) {
	n := Notification{
		ID:            e.newID(),
		Type:          typ,
		Message:       message,
		CreatedAt:     e.Now(),
		RecipientRole: recipientRole,
		RecipientID:   recipientID,
		Data:          data,
	}
	list := make([]Notification, 0, len(next.Notifications)+1)
	list = append(list, n)
	next.Notifications = append(list, next.Notifications...)
}

// IsTargeted reports whether n is addressed to staff. Unset recipient
// fields match everyone.
func IsTargeted(n Notification, staff Staff) bool {
	return (n.RecipientRole == "" || n.RecipientRole == staff.Role) &&
		(n.RecipientID == "" || n.RecipientID == staff.ID)
}

// MarkRead flags one notification as read. Unknown or already read ids
// leave the state as it is.
func (e *Engine) MarkRead(s State, id string) State {
	for i, n := range s.Notifications {
		if n.ID != id {
			continue
		}
		if n.Read {
			return s
		}
		next := s.clone()
		next.Notifications[i].Read = true
		return next
	}
	return s
}

// MarkAllRead flags every notification addressed to staff as read.
func (e *Engine) MarkAllRead(s State, staff Staff) State {
	var next *State
	for i, n := range s.Notifications {
		if n.Read || !IsTargeted(n, staff) {
			continue
		}
		if next == nil {
			c := s.clone()
			next = &c
		}
		next.Notifications[i].Read = true
	}
	if next == nil {
		return s
	}
	return *next
}

// ClearAll empties the notification log.
func (e *Engine) ClearAll(s State) State {
	next := s.clone()
	next.Notifications = []Notification{}
	return next
}

// ForStaff filters list down to the notifications addressed to staff,
// keeping the newest-first order.
func ForStaff(list []Notification, staff Staff) []Notification {
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		if IsTargeted(n, staff) {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount counts unread notifications addressed to staff.
func UnreadCount(list []Notification, staff Staff) int {
	c := 0
	for _, n := range list {
		if !n.Read && IsTargeted(n, staff) {
			c++
		}
	}
	return c
}
