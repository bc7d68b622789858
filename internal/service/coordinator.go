package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cboy-pos/api/internal/pos"
)

// ErrStopped is returned by calls made after the coordinator has stopped.
var ErrStopped = errors.New("coordinator stopped")

// Store is the single key/value slot the snapshot is kept in.
// Load returns nil data when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Change describes one committed transition.
type Change struct {
	Action  string    `json:"action"`
	ActorID string    `json:"actor_id,omitempty"`
	At      time.Time `json:"at"`

	// Notifications created by the transition, oldest first.
	Notifications []pos.Notification `json:"notifications,omitempty"`
}

// Sink receives committed changes, e.g. to push notifications to clients.
type Sink interface {
	Publish(ctx context.Context, c Change) error
}

// Options tunes a Coordinator. Zero values select the defaults.
type Options struct {
	// LateCheckEvery is how often open kitchen orders are checked for lateness.
	LateCheckEvery time.Duration
	// ChangeBuffer is how many changes may wait for slow sinks before new ones are dropped.
	ChangeBuffer int
}

type command struct {
	action  string
	actorID string
	apply   func(pos.State) (pos.State, error)
	done    chan error
}

// Coordinator owns the live snapshot. Every intent is queued and applied
// by a single goroutine, so transitions never race. Committed snapshots are
// handed to a saver goroutine (latest wins) and changes to the sinks.
type Coordinator struct {
	eng   *pos.Engine
	store Store
	sinks []Sink
	opts  Options

	state   pos.State
	cmds    chan command
	saves   chan []byte
	changes chan Change
	stopped chan struct{}
}

// New creates a Coordinator starting from initial. store may be nil, in
// which case nothing is persisted.
func New(eng *pos.Engine, initial pos.State, store Store, opts Options, sinks ...Sink) *Coordinator {
	if opts.LateCheckEvery <= 0 {
		opts.LateCheckEvery = time.Minute
	}
	if opts.ChangeBuffer <= 0 {
		opts.ChangeBuffer = 256
	}
	return &Coordinator{
		eng:     eng,
		store:   store,
		sinks:   sinks,
		opts:    opts,
		state:   initial,
		cmds:    make(chan command),
		saves:   make(chan []byte, 1),
		changes: make(chan Change, opts.ChangeBuffer),
		stopped: make(chan struct{}),
	}
}

// Engine returns the engine transitions are applied with.
func (c *Coordinator) Engine() *pos.Engine {
	return c.eng
}

// Restore replaces the starting snapshot with the stored one, reconciled.
// It must be called before Run. A store error or unreadable data is
// logged and the starting snapshot is kept, reconciled.
func (c *Coordinator) Restore(ctx context.Context) {
	if c.store == nil {
		c.state = pos.Reconcile(c.state)
		return
	}
	data, err := c.store.Load(ctx)
	if err != nil {
		log.Printf("ERROR: load snapshot, using default state: %v", err)
		data = nil
	}
	c.state = pos.Load(data, c.state)
}

// Run applies queued intents until ctx is done. Pending saves are flushed
// before it returns.
func (c *Coordinator) Run(ctx context.Context) {
	var wg sync.WaitGroup
	if c.store != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.saveLoop()
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.publishLoop()
	}()

	ticker := time.NewTicker(c.opts.LateCheckEvery)
	defer func() {
		ticker.Stop()
		close(c.stopped)
		close(c.saves)
		close(c.changes)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-c.cmds:
			cmd.done <- c.apply(cmd.action, cmd.actorID, cmd.apply)
		case <-ticker.C:
			c.apply("FLAG_LATE_ORDERS", "", func(s pos.State) (pos.State, error) {
				return c.eng.FlagLateOrders(s), nil
			})
		}
	}
}

// Do queues a transition and waits for it to be applied. A non-nil error
// from fn leaves the snapshot unchanged.
func (c *Coordinator) Do(ctx context.Context, action, actorID string, fn func(pos.State) (pos.State, error)) error {
	done := make(chan error, 1)
	select {
	case c.cmds <- command{action: action, actorID: actorID, apply: fn, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrStopped
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current snapshot. Snapshots are never modified once
// published, so the result may be read freely but must not be written to.
func (c *Coordinator) Snapshot(ctx context.Context) (pos.State, error) {
	var s pos.State
	err := c.Do(ctx, "", "", func(cur pos.State) (pos.State, error) {
		s = cur
		return cur, nil
	})
	return s, err
}

// apply runs one transition on the loop goroutine and commits the result.
func (c *Coordinator) apply(action, actorID string, fn func(pos.State) (pos.State, error)) error {
	prev := c.state
	next, err := fn(prev)
	if err != nil {
		return err
	}
	if action == "" {
		return nil
	}
	c.state = next

	fresh := newNotifications(prev.Notifications, next.Notifications)
	if action == "FLAG_LATE_ORDERS" && len(fresh) == 0 {
		return nil
	}
	if actorID != "" {
		log.Printf("pos: %s by %s", action, actorID)
	} else {
		log.Printf("pos: %s", action)
	}

	c.queueSave(next)
	change := Change{Action: action, ActorID: actorID, At: c.eng.Now(), Notifications: fresh}
	select {
	case c.changes <- change:
	default:
		log.Printf("WARN: change buffer full, dropping %s", action)
	}
	return nil
}

func (c *Coordinator) queueSave(s pos.State) {
	if c.store == nil {
		return
	}
	data, err := pos.Encode(s)
	if err != nil {
		log.Printf("ERROR: %v", err)
		return
	}
	// Only the loop goroutine sends, so after draining the send cannot block.
	select {
	case c.saves <- data:
	default:
		select {
		case <-c.saves:
		default:
		}
		c.saves <- data
	}
}

func (c *Coordinator) saveLoop() {
	for data := range c.saves {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.store.Save(ctx, data); err != nil {
			log.Printf("ERROR: save snapshot: %v", err)
		}
		cancel()
	}
}

func (c *Coordinator) publishLoop() {
	for change := range c.changes {
		for _, s := range c.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Publish(ctx, change); err != nil {
				log.Printf("ERROR: publish %s: %v", change.Action, err)
			}
			cancel()
		}
	}
}

// newNotifications returns the entries of next that are not in prev,
// oldest first.
func newNotifications(prev, next []pos.Notification) []pos.Notification {
	seen := make(map[string]struct{}, len(prev))
	for _, n := range prev {
		seen[n.ID] = struct{}{}
	}
	var out []pos.Notification
	for i := len(next) - 1; i >= 0; i-- {
		if _, ok := seen[next[i].ID]; !ok {
			out = append(out, next[i])
		}
	}
	return out
}
