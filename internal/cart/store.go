// Package cart owns the shopper's cart lines. The store merges and looks up
// lines by (product id, variant unit) and persists the full snapshot after
// every mutation. It does not validate quantities against minimums; the
// variant selection workflow does that before calling AddToCart.
package cart

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"farmstore/internal/models"
)

const persistTimeout = 5 * time.Second

type Store struct {
	mu          sync.Mutex
	repo        Repository
	items       []models.CartItem
	hasNewItems bool
}

// NewStore loads the persisted cart once. A load failure yields an empty cart.
func NewStore(ctx context.Context, repo Repository) *Store {
	s := &Store{repo: repo, items: []models.CartItem{}}

	items, err := repo.Load(ctx)
	if err != nil {
		log.Println("[CART] [ERROR] loading cart failed, starting empty:", err)
		return s
	}
	if items != nil {
		s.items = items
	}
	return s
}

// AddToCart increments the matching line or appends a new one.
func (s *Store) AddToCart(product models.Product, quantity int, variant *models.ProductVariant) {
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		log.Println("[CART] [WARN] ignoring add for product without id:", product.Name)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := models.CartItem{
		Product:         cloneProduct(product),
		Quantity:        quantity,
		SelectedVariant: cloneVariant(variant),
	}
	key := line.Key()

	merged := false
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, line)
	}

	s.hasNewItems = true
	s.persistLocked()
}

// UpdateQuantity overwrites the quantity of the matching line. Zero or a
// negative quantity removes the line. No clamping against minimum or stock.
func (s *Store) UpdateQuantity(productID string, quantity int, variantUnit string) {
	if quantity <= 0 {
		s.RemoveFromCart(productID, variantUnit)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.KeyFor(productID, variantUnit)
	changed := false
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity = quantity
			changed = true
		}
	}
	if changed {
		s.persistLocked()
	}
}

// RemoveFromCart deletes the lines matching (productID, variantUnit). An empty
// unit only matches lines without a selected variant.
func (s *Store) RemoveFromCart(productID, variantUnit string) {
	key := models.KeyFor(productID, variantUnit)
	s.removeWhere(func(item models.CartItem) bool { return item.Key() == key })
}

// RemoveProduct deletes every line of the product, whatever its variant.
func (s *Store) RemoveProduct(productID string) {
	s.removeWhere(func(item models.CartItem) bool { return item.Product.ID == productID })
}

func (s *Store) removeWhere(match func(models.CartItem) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	removed := false
	for _, item := range s.items {
		if match(item) {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	if removed {
		s.persistLocked()
	}
}

func (s *Store) IsInCart(productID, variantUnit string) bool {
	_, ok := s.GetCartItem(productID, variantUnit)
	return ok
}

// HasProduct reports whether any line, with or without variant, belongs to the product.
func (s *Store) HasProduct(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.Product.ID == productID {
			return true
		}
	}
	return false
}

func (s *Store) GetCartItem(productID, variantUnit string) (models.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.KeyFor(productID, variantUnit)
	for _, item := range s.items {
		if item.Key() == key {
			return cloneItem(item), true
		}
	}
	return models.CartItem{}, false
}

func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []models.CartItem{}
	s.persistLocked()
}

// RemoveOrdered takes the ordered quantities out of the cart. Lines added or
// topped up after the snapshot was taken keep the difference.
func (s *Store) RemoveOrdered(ordered []models.CartItem) {
	if len(ordered) == 0 {
		return
	}
	taken := make(map[models.LineKey]int, len(ordered))
	for _, item := range ordered {
		taken[item.Key()] += item.Quantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if qty, ok := taken[item.Key()]; ok {
			item.Quantity -= qty
			delete(taken, item.Key())
			if item.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, item)
	}
	s.items = kept
	s.persistLocked()
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CartItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, cloneItem(item))
	}
	return out
}

func (s *Store) GetTotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, item := range s.items {
		total += item.Subtotal()
	}
	return total
}

func (s *Store) GetTotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// GetUniqueItemsCount counts lines, not quantities.
func (s *Store) GetUniqueItemsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func (s *Store) HasNewItems() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hasNewItems
}

func (s *Store) MarkItemsAsViewed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hasNewItems = false
}

// persistLocked writes the snapshot. Callers hold s.mu, so writes land in
// mutation order. Failures are logged only.
func (s *Store) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.repo.Save(ctx, s.items); err != nil {
		log.Println("[CART] [ERROR] saving cart failed:", err)
	}
}

func cloneVariant(v *models.ProductVariant) *models.ProductVariant {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func cloneProduct(p models.Product) models.Product {
	if p.Variants != nil {
		p.Variants = append([]models.ProductVariant(nil), p.Variants...)
	}
	if p.DeliveryPrice != nil {
		price := *p.DeliveryPrice
		p.DeliveryPrice = &price
	}
	if p.IsActive != nil {
		active := *p.IsActive
		p.IsActive = &active
	}
	return p
}

func cloneItem(item models.CartItem) models.CartItem {
	item.Product = cloneProduct(item.Product)
	item.SelectedVariant = cloneVariant(item.SelectedVariant)
	return item
}
