// Package session gives every shopper their own cart, pending variant
// selections and checkout attempt.
package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"farmstore/internal/cart"
	"farmstore/internal/checkout"
	"farmstore/internal/storage"
	"farmstore/internal/workflow"
)

type Session struct {
	ID       string
	Cart     *cart.Store
	Workflow *workflow.Workflow

	mu         sync.Mutex
	selections map[string]*workflow.Selection
	submission *checkout.Submission
	newSub     func() *checkout.Submission
	lastSeen   time.Time
}

// Selection returns the open selection for a product, if any.
func (s *Session) Selection(productID string) (*workflow.Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.selections[productID]
	return sel, ok
}

func (s *Session) OpenSelection(sel *workflow.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selections[sel.ProductID()] = sel
}

func (s *Session) CloseSelection(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.selections, productID)
}

// Checkout returns the current submission. Once an order is confirmed the
// next call starts a fresh submission so the shopper can order again.
func (s *Session) Checkout() *checkout.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submission == nil || s.submission.Status().State == checkout.StateConfirmed {
		s.submission = s.newSub()
	}
	return s.submission
}

// LastCheckout returns the current submission without rotating it.
func (s *Session) LastCheckout() *checkout.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submission == nil {
		s.submission = s.newSub()
	}
	return s.submission
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Manager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	kv          storage.KV
	orders      checkout.OrderCreator
	deliveryFee float64
	now         func() time.Time
}

func NewManager(kv storage.KV, orders checkout.OrderCreator, deliveryFee float64) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		kv:          kv,
		orders:      orders,
		deliveryFee: deliveryFee,
		now:         time.Now,
	}
}

// NewID issues a session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID accepts only identifiers NewID could have issued.
func ValidID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// Get returns the live session for id, loading its cart from storage the
// first time it is seen in this process.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.touch(m.now())
		return s
	}

	store := cart.NewStore(ctx, cart.NewKVRepository(m.kv, cart.KeyForSession(id)))
	s := &Session{
		ID:         id,
		Cart:       store,
		Workflow:   workflow.New(store),
		selections: make(map[string]*workflow.Selection),
		lastSeen:   m.now(),
	}
	s.newSub = func() *checkout.Submission {
		return checkout.NewSubmission(m.orders, store, m.deliveryFee)
	}
	m.sessions[id] = s
	return s
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep forgets sessions idle for longer than idle. Their carts stay in
// storage and come back on the next request.
func (m *Manager) Sweep(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idle)
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) && s.LastCheckout().Status().State != checkout.StateSubmitting {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx ends.
func (m *Manager) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(idle); n > 0 {
				log.Printf("[SESSION] [INFO] released %d idle sessions", n)
			}
		}
	}
}

var (
	_ workflow.CartWriter = (*cart.Store)(nil)
	_ checkout.CartSource = (*cart.Store)(nil)
)
