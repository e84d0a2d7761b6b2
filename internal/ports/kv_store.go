package ports

import "context"

// KVStore is the local key-value store session and theme state live in.
// Get returns an error wrapping domain.ErrKeyNotFound for missing keys.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
