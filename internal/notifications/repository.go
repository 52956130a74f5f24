package notifications

import (
	"context"
	"encoding/json"

	"farmstore/internal/models"
	"farmstore/internal/storage"
)

// LogKey is the well-known key of the admin notification log.
const LogKey = "admin-notifications"

type Repository interface {
	Load(ctx context.Context) ([]models.Notification, error)
	Save(ctx context.Context, log []models.Notification) error
	Clear(ctx context.Context) error
}

type KVRepository struct {
	kv  storage.KV
	key string
}

func NewKVRepository(kv storage.KV) *KVRepository {
	return &KVRepository{kv: kv, key: LogKey}
}

func (r *KVRepository) Load(ctx context.Context) ([]models.Notification, error) {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var entries []models.Notification
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *KVRepository) Save(ctx context.Context, entries []models.Notification) error {
	if entries == nil {
		entries = []models.Notification{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.key, string(data))
}

func (r *KVRepository) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, r.key)
}
