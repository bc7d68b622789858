package pos

import (
	"testing"

	"github.com/cboy-pos/api/internal/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTargeted(t *testing.T) {
	wendy := Staff{ID: "w1", Role: enum.RoleWaiter}
	tests := []struct {
		name string
		n    Notification
		want bool
	}{
		{"broadcast", Notification{}, true},
		{"role match", Notification{RecipientRole: enum.RoleWaiter}, true},
		{"role mismatch", Notification{RecipientRole: enum.RoleChef}, false},
		{"id match", Notification{RecipientID: "w1"}, true},
		{"id mismatch", Notification{RecipientID: "w2"}, false},
		{"both match", Notification{RecipientRole: enum.RoleWaiter, RecipientID: "w1"}, true},
		{"role ok id wrong", Notification{RecipientRole: enum.RoleWaiter, RecipientID: "w2"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTargeted(tt.n, wendy))
		})
	}
}

func TestNotificationLog(t *testing.T) {
	f := newFixture(t)
	s := testState()
	s = f.eng.Notify(s, enum.NotificationSystem, "first", "", "", nil)
	s = f.eng.Notify(s, enum.NotificationSystem, "second", enum.RoleChef, "", nil)
	s = f.eng.Notify(s, enum.NotificationSystem, "third", "", "w1", nil)

	require.Len(t, s.Notifications, 3)
	assert.Equal(t, "third", s.Notifications[0].Message, "newest first")

	wendy, _ := s.StaffMember("w1")
	carla, _ := s.StaffMember("c1")
	assert.Len(t, ForStaff(s.Notifications, wendy), 2)
	assert.Equal(t, 2, UnreadCount(s.Notifications, carla))

	id := s.Notifications[1].ID
	read := f.eng.MarkRead(s, id)
	assert.Equal(t, 1, UnreadCount(read.Notifications, carla))
	assert.False(t, s.Notifications[1].Read, "earlier snapshot unchanged")
	assert.Equal(t, read, f.eng.MarkRead(read, id))
	assert.Equal(t, read, f.eng.MarkRead(read, "missing"))

	all := f.eng.MarkAllRead(s, wendy)
	assert.Equal(t, 0, UnreadCount(all.Notifications, wendy))
	assert.Equal(t, 1, UnreadCount(all.Notifications, carla))

	cleared := f.eng.ClearAll(s)
	assert.Empty(t, cleared.Notifications)
	assert.Len(t, s.Notifications, 3)
}
