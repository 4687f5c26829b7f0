package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/bellcenter/internal/api"
	"github.com/charlesng35/bellcenter/internal/app"
	"github.com/charlesng35/bellcenter/internal/app/maintenance"
	iauth "github.com/charlesng35/bellcenter/internal/auth"
	"github.com/charlesng35/bellcenter/internal/cache"
	"github.com/charlesng35/bellcenter/internal/database"
	"github.com/charlesng35/bellcenter/internal/middleware"
	"github.com/charlesng35/bellcenter/internal/monitoring"
	"github.com/charlesng35/bellcenter/internal/services"
	"github.com/charlesng35/bellcenter/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *cache.RedisStore
	Scheduler *maintenance.Scheduler
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, caches, background jobs, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to local rate limiting", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}
	if cfg.Auth.TrustUserHeader {
		log.Warn("trusting the X-User-Id header; only expose this listener behind an authenticating gateway")
	}

	var dbCounters *cache.DatabaseStore
	stack.RateStore, dbCounters = selectRateStore(cfg, stack.DB, stack.Redis, log)

	if cfg.Maintenance.Enabled {
		store, err := services.NewNotificationStore(stack.DB)
		if err != nil {
			return nil, fmt.Errorf("initialise notification store: %w", err)
		}
		opts := []maintenance.Option{
			maintenance.WithGaugeSchedule(cfg.Maintenance.UnreadGaugeSchedule),
			maintenance.WithPurgeSchedule(cfg.Maintenance.RatePurgeSchedule),
		}
		if dbCounters != nil {
			opts = append(opts, maintenance.WithCounterPurger(dbCounters))
		}
		stack.Scheduler = maintenance.NewScheduler(store, opts...)
		if err := stack.Scheduler.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	var routerOpts []api.RouterOption
	if stack.Redis != nil {
		routerOpts = append(routerOpts, api.WithHealthProbes(monitoring.PingProbe("redis", stack.Redis)))
	}

	stack.Router, err = api.NewRouter(stack.DB, jwtSvc, cfg, stack.RateStore, routerOpts...)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// selectRateStore picks the rate limit backend. The database store is also returned
// so its expired windows can be purged.
func selectRateStore(cfg *app.Config, db *gorm.DB, redis *cache.RedisStore, log *zap.Logger) (middleware.RateStore, *cache.DatabaseStore) {
	switch strings.ToLower(strings.TrimSpace(cfg.RateLimit.Store)) {
	case app.RateStoreRedis:
		if redis != nil {
			return middleware.NewCounterRateStore(redis), nil
		}
		log.Warn("rate_limit.store=redis but redis is unavailable; using in-memory counters")
	case app.RateStoreDatabase:
		if counters := cache.NewDatabaseStore(db); counters != nil {
			return middleware.NewCounterRateStore(counters), counters
		}
	}
	return middleware.NewMemoryRateStore(), nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Scheduler != nil {
		<-s.Scheduler.Stop().Done()
		if err := s.Scheduler.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown run failed", zap.Error(err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseOptions()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db, cfg.Database.SeedDemo); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}
