package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheTimezone stores a client -> timezone resolution in cache
func (s *Store) CacheTimezone(ctx context.Context, clientKey, timezone string, ttl time.Duration) error {
	key := TimezoneKey(s.prefix, clientKey)
	if err := s.client.Set(ctx, key, timezone, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache timezone: %w", err)
	}
	return nil
}

// GetCachedTimezone retrieves a cached timezone. A miss returns "" and no error.
func (s *Store) GetCachedTimezone(ctx context.Context, clientKey string) (string, error) {
	key := TimezoneKey(s.prefix, clientKey)
	tz, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // Cache miss
		}
		return "", fmt.Errorf("failed to get cached timezone: %w", err)
	}
	return tz, nil
}

// InvalidateTimezone removes a cached timezone
func (s *Store) InvalidateTimezone(ctx context.Context, clientKey string) error {
	key := TimezoneKey(s.prefix, clientKey)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate timezone: %w", err)
	}
	return nil
}
