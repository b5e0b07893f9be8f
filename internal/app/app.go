package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/passgen/internal/config"
	"github.com/MrSnakeDoc/passgen/internal/domain"
	"github.com/MrSnakeDoc/passgen/internal/history"
	"github.com/MrSnakeDoc/passgen/internal/httpserver"
	"github.com/MrSnakeDoc/passgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/passgen/internal/logger"
	"github.com/MrSnakeDoc/passgen/internal/presets"
	"github.com/MrSnakeDoc/passgen/internal/redis"
	"github.com/MrSnakeDoc/passgen/internal/scheduler"
	"github.com/MrSnakeDoc/passgen/internal/service"
	"github.com/MrSnakeDoc/passgen/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/passgen/internal/store/redis"
	"github.com/MrSnakeDoc/passgen/internal/timezone"
	"github.com/MrSnakeDoc/passgen/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.PresetsReloader
	gc          *scheduler.GarbageCollector
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Pick the history backend - fail fast if Redis is configured but down
	var (
		kv          redisstore.KV
		redisClient *goredis.Client
		gc          *scheduler.GarbageCollector
	)
	switch cfg.StoreBackend {
	case config.BackendRedis:
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
		kv, redisClient = client, client
	default:
		loggerClient.Warn("using in-memory store, history is lost on restart")
		mem := memory.NewKV()
		kv = mem
		gc = scheduler.NewGarbageCollector(mem, loggerClient, scheduler.DefaultGCInterval)
	}

	store := redisstore.NewStore(kv, cfg.KeyPrefix)

	// Restore the persisted history (never fails, worst case empty)
	hist := history.NewService(store, loggerClient)
	hist.Load(context.Background())

	locator := timezone.New(timezone.Options{
		Enabled:         cfg.TimezoneLookup,
		URL:             cfg.TimezoneURL,
		Timeout:         cfg.TimezoneTimeout,
		CacheTTL:        cfg.TimezoneCacheTTL,
		Fallback:        cfg.FallbackTimezone,
		BreakerFailures: uint32(max(cfg.BreakerFailures, 1)),
		BreakerCooldown: cfg.BreakerCooldown,
	}, store, nil, loggerClient)
	loggerClient.Info("timezone locator ready",
		logger.Bool("lookup", cfg.TimezoneLookup),
		logger.String("fallback", locator.Fallback()))

	// Presets are optional
	registry := presets.NewRegistry()
	var reloader *scheduler.PresetsReloader
	var reloadTrigger chan struct{}
	if cfg.PresetsFile != "" {
		loggerClient.Info("presets file configured, initializing presets reloader",
			logger.String("file", cfg.PresetsFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewPresetsReloader(
			cfg.PresetsFile,
			registry,
			loggerClient,
			cfg.PresetsReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("presets file not configured, presets disabled")
	}

	passwords := service.NewPassword(hist, locator, registry, service.Options{
		Defaults: defaultConfig(cfg, loggerClient),
		Site:     cfg.SiteURL,
	}, loggerClient)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:              loggerClient,
		StartTime:           time.Now(),
		Version:             version.Version,
		Commit:              version.Commit,
		BuildDate:           version.BuildDate,
		GoVersion:           version.GoVersion,
		TimeNow:             time.Now,
		AllowedHosts:        cfg.AllowedHosts,
		AllowedCIDRS:        cfg.AllowedCIDRS,
		TrustProxy:          cfg.TrustProxy,
		StoreBackend:        cfg.StoreBackend,
		RedisClient:         redisClient,
		Passwords:           passwords,
		Presets:             registry,
		PresetsFile:         cfg.PresetsFile,
		Timezone:            locator,
		ReloadTrigger:       reloadTrigger,
		RateLimitBurst:      cfg.RateLimitBurst,
		RateLimitPerMin:     cfg.RateLimitPerMin,
		RateLimitMaxEntries: cfg.RateLimitMaxUsers,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
		gc:          gc,
	}
}

// defaultConfig builds the generation defaults from PASSGEN_DEFAULT_*,
// falling back to 12 characters of upper, lower and digits.
func defaultConfig(cfg *config.Config, log logger.Logger) domain.GenerationConfig {
	cats, err := domain.ParseCategorySet(cfg.DefaultCategories)
	if err != nil {
		log.Warn("invalid PASSGEN_DEFAULT_CATEGORIES, using built-in defaults", logger.Error(err))
		return domain.DefaultConfig()
	}
	c := domain.GenerationConfig{
		Length:         cfg.DefaultLength,
		Categories:     cats,
		ExcludeSimilar: cfg.DefaultExcludeSimilar,
	}
	if err := c.Validate(); err != nil {
		log.Warn("invalid generation defaults, using built-in defaults", logger.Error(err))
		return domain.DefaultConfig()
	}
	return c
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting passgen v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("passgen %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start presets reloader (if enabled)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start presets reloader: %w", err)
		}
		a.logger.Info("presets reloader started",
			logger.Duration("interval", a.cfg.PresetsReloadInterval))
	}

	// Start garbage collector (memory backend only)
	if a.gc != nil {
		if err := a.gc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start garbage collector: %w", err)
		}
		a.logger.Info("garbage collector started",
			logger.Duration("interval", scheduler.DefaultGCInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}
	if a.gc != nil {
		a.gc.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ passgen stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
