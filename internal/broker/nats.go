package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cboy-pos/api/internal/pos"
	"github.com/cboy-pos/api/internal/service"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix is the root of every subject the NATS publisher uses.
const SubjectPrefix = "pos"

type natsConn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher publishes each change on pos.changes and each new
// notification on a subject derived from its recipient:
//
//	pos.notify.staff.<id>   targeted at one staff member
//	pos.notify.role.<role>  targeted at a role
//	pos.notify.all          broadcast
type NATSPublisher struct {
	conn natsConn
}

// NewNATSPublisher connects to the server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("cboy-pos"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish implements service.Sink.
func (p *NATSPublisher) Publish(_ context.Context, c service.Change) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := p.conn.Publish(SubjectPrefix+".changes", body); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	for _, n := range c.Notifications {
		msg, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		if err := p.conn.Publish(NotificationSubject(n), msg); err != nil {
			return fmt.Errorf("publish notification %s: %w", n.ID, err)
		}
	}
	return nil
}

// NotificationSubject returns the subject a notification is published on.
// A notification addressed to a staff member goes to that member only.
func NotificationSubject(n pos.Notification) string {
	switch {
	case n.RecipientID != "":
		return SubjectPrefix + ".notify.staff." + n.RecipientID
	case n.RecipientRole != "":
		return SubjectPrefix + ".notify.role." + n.RecipientRole
	default:
		return SubjectPrefix + ".notify.all"
	}
}

// Close closes the connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
