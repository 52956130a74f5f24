// Package storage holds the key-value backends used to persist the cart
// snapshot and the admin notification log.
package storage

import (
	"context"
	"errors"
)

// KV is a string key-value store. Get reports found=false for missing keys
// instead of an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var ErrEmptyKey = errors.New("storage: empty key")
