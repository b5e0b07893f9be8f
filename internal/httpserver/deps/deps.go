package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/passgen/internal/logger"
	"github.com/MrSnakeDoc/passgen/internal/presets"
	"github.com/MrSnakeDoc/passgen/internal/service"
	"github.com/MrSnakeDoc/passgen/internal/timezone"
)

type Deps struct {
	Logger              logger.Logger
	StartTime           time.Time
	Version             string
	Commit              string
	BuildDate           string
	GoVersion           string
	TimeNow             func() time.Time   // for testing, defaults to time.Now
	AllowedHosts        []string           // Host headers allowed to access history and reload
	AllowedCIDRS        []string           // IPs allowed to access history, reload and readyz
	TrustProxy          bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	StoreBackend        string             // "redis" or "memory"
	RedisClient         *redis.Client      // nil with the memory backend
	Passwords           *service.Password  // generate / score / history
	Presets             *presets.Registry  // current presets
	PresetsFile         string             // empty when presets are disabled
	Timezone            *timezone.Locator  // client timezone resolution
	ReloadTrigger       chan struct{}      // Channel to trigger manual presets reload (nil if presets disabled)
	RateLimitBurst      int                // /api/generate bucket size per client
	RateLimitPerMin     int                // /api/generate refill per client
	RateLimitMaxEntries int                // tracked clients before an early sweep
}
