// Package timezone resolves the IANA zone of a client without ever making the
// caller wait on the network.
package timezone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/passgen/internal/logger"
	"github.com/MrSnakeDoc/passgen/internal/utils"
)

// ErrNetworkUnavailable wraps every lookup failure: transport errors, bad
// responses and an open breaker.
var ErrNetworkUnavailable = errors.New("timezone lookup unavailable")

// selfKey is the cache key used when the lookup URL has no {ip} placeholder
// and therefore geolocates the server itself.
const selfKey = "self"

const maxResponseBytes = 64 << 10

// Cache stores resolved zones. The redis store satisfies it.
type Cache interface {
	GetCachedTimezone(ctx context.Context, clientKey string) (string, error)
	CacheTimezone(ctx context.Context, clientKey, timezone string, ttl time.Duration) error
}

// Options configures a Locator.
type Options struct {
	Enabled         bool
	URL             string        // "{ip}" is replaced by the client address
	Timeout         time.Duration // per HTTP lookup
	CacheTTL        time.Duration
	Fallback        string // preferred fallback zone, may be empty
	BreakerFailures uint32 // consecutive failures before opening
	BreakerCooldown time.Duration
}

// Locator resolves zones from a cache, refreshing it in the background.
type Locator struct {
	opts     Options
	client   *http.Client
	cache    Cache
	breaker  *gobreaker.CircuitBreaker
	group    singleflight.Group
	logger   logger.Logger
	fallback string
}

type lookupResponse struct {
	Timezone string `json:"timezone"`
	Error    bool   `json:"error"`
	Reason   string `json:"reason"`
}

// New builds a Locator. client may be nil.
func New(opts Options, cache Cache, client *http.Client, log logger.Logger) *Locator {
	if opts.Timeout <= 0 || opts.Timeout > 2*time.Second {
		opts.Timeout = 2 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 3
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = time.Minute
	}
	if client == nil {
		client = &http.Client{}
	}
	client.Timeout = opts.Timeout

	l := &Locator{
		opts:     opts,
		client:   client,
		cache:    cache,
		logger:   log,
		fallback: LocalFallback(opts.Fallback),
	}

	failures := opts.BreakerFailures
	l.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "timezone-lookup",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})
	return l
}

// Fallback returns the zone used whenever nothing better is known.
func (l *Locator) Fallback() string { return l.fallback }

// BreakerState reports "closed", "half-open" or "open".
func (l *Locator) BreakerState() string { return l.breaker.State().String() }

// Resolve returns the cached zone for clientIP or the fallback, and starts a
// background refresh on a cache miss. It never waits on the network.
func (l *Locator) Resolve(ctx context.Context, clientIP string) string {
	if !l.opts.Enabled {
		return l.fallback
	}
	key, ok := l.cacheKey(clientIP)
	if !ok {
		return l.fallback
	}

	if l.cache != nil {
		tz, err := l.cache.GetCachedTimezone(ctx, key)
		if err != nil {
			l.logger.Debug("timezone cache read failed", logger.Error(err))
		}
		if validZone(tz) {
			return tz
		}
	}

	// The result channel is buffered by singleflight and safe to drop.
	l.group.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), l.opts.Timeout)
		defer cancel()
		tz, err := l.lookup(ctx, key, clientIP)
		if err != nil {
			l.logger.Debug("background timezone lookup failed",
				logger.String("key", key),
				logger.Error(err))
		}
		return tz, err
	})

	return l.fallback
}

// Lookup performs a synchronous lookup for clientIP and caches the result.
// Concurrent calls for the same client share one request.
func (l *Locator) Lookup(ctx context.Context, clientIP string) (string, error) {
	key, ok := l.cacheKey(clientIP)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a public address", ErrNetworkUnavailable, clientIP)
	}
	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		return l.lookup(ctx, key, clientIP)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (l *Locator) lookup(ctx context.Context, key, clientIP string) (string, error) {
	v, err := l.breaker.Execute(func() (interface{}, error) {
		return l.fetch(ctx, clientIP)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
		}
		return "", err
	}
	tz := v.(string)

	if l.cache != nil {
		if err := l.cache.CacheTimezone(ctx, key, tz, l.opts.CacheTTL); err != nil {
			l.logger.Warn("failed to cache timezone", logger.String("key", key), logger.Error(err))
		}
	}
	return tz, nil
}

func (l *Locator) fetch(ctx context.Context, clientIP string) (string, error) {
	endpoint := strings.ReplaceAll(l.opts.URL, "{ip}", url.PathEscape(clientIP))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrNetworkUnavailable, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrNetworkUnavailable, err)
	}
	if body.Error {
		return "", fmt.Errorf("%w: %s", ErrNetworkUnavailable, body.Reason)
	}
	if !validZone(body.Timezone) {
		return "", fmt.Errorf("%w: invalid zone %q", ErrNetworkUnavailable, body.Timezone)
	}
	return body.Timezone, nil
}

// cacheKey returns false when the lookup must be skipped.
func (l *Locator) cacheKey(clientIP string) (string, bool) {
	if !strings.Contains(l.opts.URL, "{ip}") {
		return selfKey, true
	}
	if !utils.IsPublicIP(clientIP) {
		return "", false
	}
	return clientIP, true
}

// LocalFallback picks preferred when it is a known zone, then $TZ, then UTC.
func LocalFallback(preferred string) string {
	if validZone(preferred) {
		return preferred
	}
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); validZone(tz) {
		return tz
	}
	return "UTC"
}

func validZone(name string) bool {
	if name == "" || name == "Local" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}
