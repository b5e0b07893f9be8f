package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTimezoneTTL is how long a looked-up timezone is trusted (24 hours)
	DefaultTimezoneTTL = 24 * time.Hour
)

// KV is the subset of the go-redis API the store relies on.
// *redis.Client satisfies it, and so does the in-memory fallback.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store handles persistence of the history blob and the timezone cache
type Store struct {
	client KV
	prefix string
}

// NewStore creates a new store. prefix namespaces every key (may be empty).
func NewStore(client KV, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}
