package cart

import (
	"context"
	"encoding/json"
	"log"

	"farmstore/internal/models"
	"farmstore/internal/storage"
)

// StorageKey is the well-known key of the cart snapshot.
const StorageKey = "farm-cart"

// KeyForSession scopes the snapshot key to one shopper session.
func KeyForSession(sessionID string) string {
	if sessionID == "" {
		return StorageKey
	}
	return StorageKey + ":" + sessionID
}

type Repository interface {
	Load(ctx context.Context) ([]models.CartItem, error)
	Save(ctx context.Context, items []models.CartItem) error
}

// KVRepository persists the whole cart, product snapshots included, as one
// JSON document.
type KVRepository struct {
	kv  storage.KV
	key string
}

func NewKVRepository(kv storage.KV, key string) *KVRepository {
	return &KVRepository{kv: kv, key: key}
}

func (r *KVRepository) Load(ctx context.Context) ([]models.CartItem, error) {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}

	valid := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		item.Product.Normalize()
		if item.Product.ID == "" || item.Quantity <= 0 {
			log.Printf("[CART] [WARN] dropping invalid persisted line id=%q quantity=%d", item.Product.ID, item.Quantity)
			continue
		}
		valid = append(valid, item)
	}
	return valid, nil
}

func (r *KVRepository) Save(ctx context.Context, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.key, string(data))
}
