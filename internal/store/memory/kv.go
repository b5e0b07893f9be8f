package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is an in-memory key-value store with the same call shape as go-redis.
// It acts as a fallback when Redis is disabled, and backs the store tests.
type KV struct {
	mu    sync.RWMutex
	items map[string]item
	now   func() time.Time
}

type item struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

// NewKV creates an empty store
func NewKV() *KV {
	return &KV{
		items: make(map[string]item),
		now:   time.Now,
	}
}

// Get returns the value at key, or redis.Nil when absent or expired
func (m *KV) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.RLock()
	it, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || it.expired(m.now()) {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(it.value, nil)
}

// Set stores value at key. A zero expiration keeps the key forever.
func (m *KV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	it := item{value: stringify(value)}
	if expiration > 0 {
		it.expiresAt = m.now().Add(expiration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = it
	return redis.NewStatusResult("OK", nil)
}

// Del removes keys and reports how many existed
func (m *KV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, k := range keys {
		if it, ok := m.items[k]; ok {
			if !it.expired(m.now()) {
				n++
			}
			delete(m.items, k)
		}
	}
	return redis.NewIntResult(n, nil)
}

// Len returns the number of live keys
func (m *KV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, it := range m.items {
		if !it.expired(now) {
			n++
		}
	}
	return n
}

// Sweep drops expired keys and returns how many were removed.
// Reads already hide expired keys; Sweep only reclaims their memory.
func (m *KV) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for k, it := range m.items {
		if it.expired(now) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

func (it item) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && !now.Before(it.expiresAt)
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}
