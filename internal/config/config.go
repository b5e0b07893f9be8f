package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Generation defaults, used for fields a request leaves out
	DefaultLength         int      // 6..32 (default: 12)
	DefaultCategories     []string // ex: "upper,lower,digit"
	DefaultExcludeSimilar bool
	SiteURL               string // source site written in detailed exports

	PresetsFile           string        // path to presets.yaml (optional, empty = no presets)
	PresetsReloadInterval time.Duration // interval to reload presets.yaml (default: 1h)

	// History persistence
	StoreBackend string // "redis" | "memory"
	KeyPrefix    string // optional namespace for every key

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Timezone lookup
	TimezoneLookup   bool          // false => always use the fallback zone
	TimezoneURL      string        // "{ip}" is replaced by the client IP
	TimezoneTimeout  time.Duration // per lookup (default: 2s)
	TimezoneCacheTTL time.Duration // how long a looked-up zone is reused (default: 24h)
	FallbackTimezone string        // empty => $TZ, then UTC
	BreakerFailures  int           // consecutive failures before the breaker opens
	BreakerCooldown  time.Duration // how long the breaker stays open

	// Rate limiting of /api/generate
	RateLimitBurst    int
	RateLimitPerMin   int
	RateLimitMaxUsers int

	AllowedHosts []string // optional, restrict history/reload access to specific Host headers
	AllowedCIDRS []string // optional, restrict history/reload access to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	loadDotEnv(getenv("PASSGEN_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PASSGEN_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("PASSGEN_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("PASSGEN_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PASSGEN_PRETTY_LOG", true),

		// Generation
		DefaultLength:         getenvInt("PASSGEN_DEFAULT_LENGTH", 12),
		DefaultCategories:     splitAndTrim(getenv("PASSGEN_DEFAULT_CATEGORIES", "upper,lower,digit")),
		DefaultExcludeSimilar: mustBool("PASSGEN_DEFAULT_EXCLUDE_SIMILAR", false),
		SiteURL:               getenv("PASSGEN_SITE_URL", "passgen"),

		// Presets
		PresetsFile:           getenv("PASSGEN_PRESETS_FILE", ""), // Optional, empty = presets disabled
		PresetsReloadInterval: mustDuration("PASSGEN_PRESETS_RELOAD_INTERVAL", time.Hour),

		// Persistence
		StoreBackend: strings.ToLower(getenv("PASSGEN_STORE_BACKEND", BackendRedis)),
		KeyPrefix:    getenv("PASSGEN_KEY_PREFIX", ""),

		// Redis settings
		RedisUser:             getenv("PASSGEN_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("PASSGEN_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("PASSGEN_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("PASSGEN_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Timezone lookup
		TimezoneLookup:   mustBool("PASSGEN_TIMEZONE_LOOKUP", true),
		TimezoneURL:      getenv("PASSGEN_TIMEZONE_URL", "https://ipapi.co/{ip}/json/"),
		TimezoneTimeout:  mustDuration("PASSGEN_TIMEZONE_TIMEOUT", 2*time.Second),
		TimezoneCacheTTL: mustDuration("PASSGEN_TIMEZONE_CACHE_TTL", 24*time.Hour),
		FallbackTimezone: getenv("PASSGEN_FALLBACK_TIMEZONE", ""),
		BreakerFailures:  getenvInt("PASSGEN_TIMEZONE_BREAKER_FAILURES", 3),
		BreakerCooldown:  mustDuration("PASSGEN_TIMEZONE_BREAKER_COOLDOWN", time.Minute),

		// Rate limiting
		RateLimitBurst:    getenvInt("PASSGEN_RATE_LIMIT_BURST", 20),
		RateLimitPerMin:   getenvInt("PASSGEN_RATE_LIMIT_PER_MIN", 60),
		RateLimitMaxUsers: getenvInt("PASSGEN_RATE_LIMIT_MAX_ENTRIES", 10000),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("PASSGEN_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("PASSGEN_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("PASSGEN_TRUST_PROXY", false),
	}

	switch cfg.StoreBackend {
	case BackendRedis:
		cfg.RedisAddr = requireEnv("PASSGEN_REDIS_ADDR")
	case BackendMemory:
		cfg.RedisAddr = getenv("PASSGEN_REDIS_ADDR", "")
	default:
		panic(fmt.Sprintf("❌ FATAL: PASSGEN_STORE_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, cfg.StoreBackend))
	}

	// Validate Redis password configuration
	if cfg.StoreBackend == BackendRedis && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: PASSGEN_REDIS_PASSWORD is required when PASSGEN_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.TimezoneTimeout <= 0 || cfg.TimezoneTimeout > 2*time.Second {
		log.Printf("[WARN] PASSGEN_TIMEZONE_TIMEOUT=%v out of (0, 2s], using 2s", cfg.TimezoneTimeout)
		cfg.TimezoneTimeout = 2 * time.Second
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadDotEnv loads KEY=VALUE pairs from path without overriding the
// environment. A missing file is not an error.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] failed to load %s: %v", path, err)
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
