package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewKV(t *testing.T) {
	kv := NewKV()
	if kv == nil {
		t.Fatal("NewKV() returned nil")
	}
	if kv.Len() != 0 {
		t.Errorf("NewKV() should start empty, got %d keys", kv.Len())
	}
}

func TestSetGet(t *testing.T) {
	kv := NewKV()
	ctx := context.Background()

	if err := kv.Set(ctx, "a", "1", 0).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := kv.Set(ctx, "b", []byte(`["x"]`), 0).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got, err := kv.Get(ctx, "a").Result(); err != nil || got != "1" {
		t.Errorf("Get(a) = %q, %v, want \"1\", nil", got, err)
	}
	if got, err := kv.Get(ctx, "b").Bytes(); err != nil || string(got) != `["x"]` {
		t.Errorf("Get(b) = %q, %v", got, err)
	}
}

func TestGetMissing(t *testing.T) {
	kv := NewKV()
	_, err := kv.Get(context.Background(), "missing").Result()
	if !errors.Is(err, redis.Nil) {
		t.Errorf("Get() on missing key error = %v, want redis.Nil", err)
	}
}

func TestSetOverwrites(t *testing.T) {
	kv := NewKV()
	ctx := context.Background()

	kv.Set(ctx, "k", "old", 0)
	kv.Set(ctx, "k", "new", 0)

	if got, _ := kv.Get(ctx, "k").Result(); got != "new" {
		t.Errorf("Get() = %q, want \"new\"", got)
	}
	if kv.Len() != 1 {
		t.Errorf("Len() = %d, want 1", kv.Len())
	}
}

func TestExpiration(t *testing.T) {
	kv := NewKV()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	kv.Set(ctx, "tz", "Europe/Paris", time.Minute)
	if got, _ := kv.Get(ctx, "tz").Result(); got != "Europe/Paris" {
		t.Fatalf("Get() before expiry = %q", got)
	}

	now = now.Add(time.Minute)
	if _, err := kv.Get(ctx, "tz").Result(); !errors.Is(err, redis.Nil) {
		t.Errorf("Get() after expiry error = %v, want redis.Nil", err)
	}
	if kv.Len() != 0 {
		t.Errorf("Len() after expiry = %d, want 0", kv.Len())
	}
}

func TestDel(t *testing.T) {
	kv := NewKV()
	ctx := context.Background()

	kv.Set(ctx, "a", "1", 0)
	kv.Set(ctx, "b", "2", 0)

	n, err := kv.Del(ctx, "a", "missing").Result()
	if err != nil || n != 1 {
		t.Errorf("Del() = %d, %v, want 1, nil", n, err)
	}
	if kv.Len() != 1 {
		t.Errorf("Len() = %d, want 1", kv.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	kv := NewKV()
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			kv.Set(ctx, "shared", "v", 0)
		}()
		go func() {
			defer wg.Done()
			_ = kv.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	if kv.Len() != 1 {
		t.Errorf("Len() = %d, want 1", kv.Len())
	}
}

func TestSweep(t *testing.T) {
	kv := NewKV()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	kv.Set(ctx, "short", "a", time.Second)
	kv.Set(ctx, "long", "b", time.Hour)
	kv.Set(ctx, "forever", "c", 0)

	if n := kv.Sweep(); n != 0 {
		t.Errorf("Sweep() = %d before expiry, want 0", n)
	}

	now = now.Add(time.Minute)
	if n := kv.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if len(kv.items) != 2 {
		t.Errorf("items = %d after sweep, want 2", len(kv.items))
	}
}
