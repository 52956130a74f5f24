// Package notifications keeps the admin's durable log of new-order events,
// fed by a background subscription that runs whether or not an admin is
// watching.
package notifications

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"farmstore/internal/models"
	"farmstore/internal/pricing"
)

const persistTimeout = 5 * time.Second

var ErrAlreadyStarted = errors.New("notification channel already started")

// ViewerPresence reports whether an admin is currently looking at the
// dashboard.
type ViewerPresence interface {
	HasViewers() bool
}

// Snapshot is the log as shown to the admin.
type Snapshot struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

type Options struct {
	// Limit caps the log to the newest entries. Zero keeps everything.
	Limit    int
	Currency pricing.Currency
	Notifier Notifier
	Presence ViewerPresence
}

type Channel struct {
	mu      sync.Mutex
	repo    Repository
	feed    Feed
	opts    Options
	entries []models.Notification
	lastID  int64
	now     func() time.Time
	updates chan Snapshot

	permitted atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewChannel loads the persisted log. A missing or unreadable log starts
// empty.
func NewChannel(ctx context.Context, repo Repository, feed Feed, opts Options) *Channel {
	c := &Channel{
		repo:    repo,
		feed:    feed,
		opts:    opts,
		entries: []models.Notification{},
		now:     time.Now,
		updates: make(chan Snapshot, 1),
	}

	entries, err := repo.Load(ctx)
	if err != nil {
		log.Println("[NOTIFY] [ERROR] loading notification log failed, starting empty:", err)
		return c
	}
	if entries != nil {
		c.entries = entries
	}
	c.trimLocked()
	for _, n := range c.entries {
		if id, err := strconv.ParseInt(n.ID, 10, 64); err == nil && id > c.lastID {
			c.lastID = id
		}
	}
	return c
}

// Start subscribes to the feed and handles its events in the background
// until ctx ends or Stop is called.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	events, err := c.feed.Subscribe(ctx)
	if err != nil {
		c.mu.Unlock()
		cancel()
		return err
	}
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	if c.opts.Notifier != nil {
		c.permitted.Store(c.opts.Notifier.RequestPermission(ctx))
		if !c.permitted.Load() {
			log.Println("[NOTIFY] [WARN] alert permission denied, only the log will be updated")
		}
	}

	go c.run(ctx, events, done)
	log.Println("[NOTIFY] [INFO] listening for new orders")
	return nil
}

func (c *Channel) run(ctx context.Context, events <-chan models.OrderEvent, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				log.Println("[NOTIFY] [WARN] order feed closed, no longer receiving new orders")
				return
			}
			c.Deliver(ev)
		}
	}
}

// Stop ends the subscription and waits for the handler goroutine.
func (c *Channel) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Deliver records one new-order event at the head of the log.
func (c *Channel) Deliver(ev models.OrderEvent) models.Notification {
	c.mu.Lock()
	n := models.Notification{
		ID:           c.nextIDLocked(),
		OrderID:      ev.OrderID.String(),
		OrderNumber:  ev.OrderNumber.String(),
		CustomerName: ev.CustomerName,
		TotalAmount:  ev.TotalAmount,
		DeliveryType: ev.DeliveryType,
		Timestamp:    c.now(),
	}
	c.entries = append([]models.Notification{n}, c.entries...)
	c.trimLocked()
	c.persistLocked()
	c.publishLocked()
	c.mu.Unlock()

	log.Printf("[NOTIFY] [INFO] new order #%s from %s", n.OrderNumber, n.CustomerName)

	if c.opts.Notifier != nil && c.permitted.Load() && c.opts.Presence != nil && c.opts.Presence.HasViewers() {
		title, body, opts := OrderAlert(n, c.opts.Currency)
		c.opts.Notifier.Show(title, body, opts)
	}
	return n
}

func (c *Channel) MarkAsRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		if c.entries[i].ID == id {
			c.entries[i].Read = true
			c.persistLocked()
			c.publishLocked()
			return true
		}
	}
	return false
}

func (c *Channel) MarkAllAsRead() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		c.entries[i].Read = true
	}
	c.persistLocked()
	c.publishLocked()
}

// ClearNotifications empties the log and removes it from storage.
func (c *Channel) ClearNotifications() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = []models.Notification{}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.repo.Clear(ctx); err != nil {
		log.Println("[NOTIFY] [ERROR] clearing notification log failed:", err)
	}
	c.publishLocked()
}

func (c *Channel) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.unreadLocked()
}

func (c *Channel) Notifications() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Notification, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Channel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// Updates delivers the latest snapshot after every change. Only the newest
// pending snapshot is kept for a slow reader.
func (c *Channel) Updates() <-chan Snapshot {
	return c.updates
}

func (c *Channel) nextIDLocked() string {
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return strconv.FormatInt(id, 10)
}

func (c *Channel) trimLocked() {
	if c.opts.Limit > 0 && len(c.entries) > c.opts.Limit {
		c.entries = c.entries[:c.opts.Limit]
	}
}

func (c *Channel) unreadLocked() int {
	count := 0
	for _, n := range c.entries {
		if !n.Read {
			count++
		}
	}
	return count
}

func (c *Channel) snapshotLocked() Snapshot {
	out := make([]models.Notification, len(c.entries))
	copy(out, c.entries)
	return Snapshot{Notifications: out, UnreadCount: c.unreadLocked()}
}

func (c *Channel) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.repo.Save(ctx, c.entries); err != nil {
		log.Println("[NOTIFY] [ERROR] saving notification log failed:", err)
	}
}

func (c *Channel) publishLocked() {
	snap := c.snapshotLocked()
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
}
