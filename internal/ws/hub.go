package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cboy-pos/api/internal/pos"
	"github.com/cboy-pos/api/internal/service"
)

// Event types pushed to clients.
const (
	EventStateChanged = "state.changed"
	EventNotification = "notification"
)

// Event represents a WebSocket message to be delivered
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// delivery is an event plus the notification it carries, if any.
// Events without a notification go to every client.
type delivery struct {
	Event        Event
	Notification *pos.Notification
}

// Hub maintains the set of active clients and pushes events to them
type Hub struct {
	// Registered clients by staff ID; one staff member may have several terminals
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Outbound events
	broadcast chan *delivery

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *delivery, 256),
	}
}

// Run starts the hub's main loop and returns when ctx is done.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for staffID, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, staffID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.staffID] == nil {
				h.rooms[client.staffID] = make(map[*Client]bool)
			}
			h.rooms[client.staffID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case d := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(d.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for _, clients := range h.rooms {
				for client := range clients {
					if d.Notification != nil && !pos.IsTargeted(*d.Notification, client.staff()) {
						continue
					}
					select {
					case client.send <- message:
					default:
						// Client's send buffer is full, drop it
						h.remove(client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove closes and forgets a client. Callers hold h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.staffID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.staffID)
	}
}

// Online returns the ids of staff with at least one open connection.
func (h *Hub) Online() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Publish implements service.Sink. Every client is told the state changed;
// each new notification only reaches the clients it is addressed to.
func (h *Hub) Publish(ctx context.Context, c service.Change) error {
	payload, err := json.Marshal(struct {
		Action  string `json:"action"`
		ActorID string `json:"actor_id,omitempty"`
		At      string `json:"at"`
	}{c.Action, c.ActorID, c.At.UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	if err := h.send(ctx, &delivery{Event: Event{Type: EventStateChanged, Payload: payload}}); err != nil {
		return err
	}

	for i := range c.Notifications {
		n := c.Notifications[i]
		payload, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if err := h.send(ctx, &delivery{Event: Event{Type: EventNotification, Payload: payload}, Notification: &n}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) send(ctx context.Context, d *delivery) error {
	select {
	case h.broadcast <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
