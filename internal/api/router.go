package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/bellcenter/internal/app"
	iauth "github.com/charlesng35/bellcenter/internal/auth"
	"github.com/charlesng35/bellcenter/internal/database"
	"github.com/charlesng35/bellcenter/internal/handlers"
	"github.com/charlesng35/bellcenter/internal/middleware"
	"github.com/charlesng35/bellcenter/internal/monitoring"
	"github.com/charlesng35/bellcenter/internal/services"
)

// RouterOption customises optional router wiring.
type RouterOption func(*routerOptions)

type routerOptions struct {
	probes []monitoring.Probe
}

// WithHealthProbes adds readiness probes beyond the database check.
func WithHealthProbes(probes ...monitoring.Probe) RouterOption {
	return func(o *routerOptions) {
		o.probes = append(o.probes, probes...)
	}
}

// NewRouter builds the Gin engine, wires middleware and registers the inbox routes.
// A nil rate store falls back to process-local counting.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, rateStore middleware.RateStore, opts ...RouterOption) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	options := routerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins:   cfg.Server.CORS.AllowedOrigins,
		AllowCredentials: cfg.Server.CORS.AllowCredentials,
	}))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(rateStore, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// Health endpoints (public)
	checker := monitoring.NewHealthChecker(monitoring.Probe{
		Name:  "database",
		Check: func(ctx context.Context) error { return database.Ping(ctx, db) },
	})
	for _, probe := range options.probes {
		checker.Register(probe)
	}
	r.GET("/health", handlers.Health(checker))
	r.GET("/health/live", handlers.Live)

	notificationSvc, err := services.NewNotificationService(db, nil)
	if err != nil {
		return nil, err
	}

	registerNotificationRoutes(r, notificationRoutes{
		notifications: handlers.NewNotificationHandler(notificationSvc),
		realtime: handlers.NewRealtimeHandler(handlers.Negotiation{
			URL:         cfg.Realtime.Negotiation.URL,
			AccessToken: cfg.Realtime.Negotiation.AccessToken,
			ExpiresIn:   cfg.Realtime.Negotiation.ExpiresIn,
		}),
		identity: middleware.Identity(middleware.IdentityOptions{
			JWT:             jwt,
			TrustUserHeader: cfg.Auth.TrustUserHeader,
		}),
	})

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
