package pos

import (
	"sort"
	"time"

	"github.com/cboy-pos/api/internal/enum"
)

// Priority thresholds for kitchen tickets, by time since the order was placed.
const (
	highPriorityAfter = 10 * time.Minute
	rushPriorityAfter = 20 * time.Minute
)

// KitchenTicket is an order as shown on the kitchen board.
type KitchenTicket struct {
	Order          Order  `json:"order"`
	Priority       string `json:"priority"`
	ElapsedMinutes int    `json:"elapsed_minutes"`
}

// KitchenBoard holds the kitchen lanes, oldest ticket first in each.
type KitchenBoard struct {
	Pending    []KitchenTicket `json:"pending"`
	Accepted   []KitchenTicket `json:"accepted"`
	InProgress []KitchenTicket `json:"in_progress"`
	Ready      []KitchenTicket `json:"ready"`
}

// Priority grades how long an order has been waiting.
func Priority(createdAt, now time.Time) string {
	switch d := now.Sub(createdAt); {
	case d > rushPriorityAfter:
		return enum.PriorityRush
	case d > highPriorityAfter:
		return enum.PriorityHigh
	default:
		return enum.PriorityNormal
	}
}

// KitchenQueues sorts the kitchen's orders into lanes.
func KitchenQueues(orders []Order, now time.Time) KitchenBoard {
	b := KitchenBoard{
		Pending:    []KitchenTicket{},
		Accepted:   []KitchenTicket{},
		InProgress: []KitchenTicket{},
		Ready:      []KitchenTicket{},
	}
	for _, o := range orders {
		t := KitchenTicket{
			Order:          o,
			Priority:       Priority(o.CreatedAt, now),
			ElapsedMinutes: elapsedMinutes(o.CreatedAt, now),
		}
		switch o.Status {
		case enum.OrderStatusPending:
			b.Pending = append(b.Pending, t)
		case enum.OrderStatusAccepted:
			b.Accepted = append(b.Accepted, t)
		case enum.OrderStatusInProgress:
			b.InProgress = append(b.InProgress, t)
		case enum.OrderStatusReady:
			b.Ready = append(b.Ready, t)
		}
	}
	for _, lane := range [][]KitchenTicket{b.Pending, b.Accepted, b.InProgress, b.Ready} {
		sort.SliceStable(lane, func(i, j int) bool {
			return lane[i].Order.CreatedAt.Before(lane[j].Order.CreatedAt)
		})
	}
	return b
}
