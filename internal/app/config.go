package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. BELLCENTER_SERVER_PORT.
const EnvPrefix = "BELLCENTER"

// Config represents the runtime configuration for the Bell Center service.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Auth        AuthConfig        `mapstructure:"auth"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Realtime    RealtimeConfig    `mapstructure:"realtime"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver"`
	Path            string            `mapstructure:"path"`
	DSN             string            `mapstructure:"dsn"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Name            string            `mapstructure:"name"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	Options         map[string]string `mapstructure:"options"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration     `mapstructure:"conn_max_lifetime"`
	LogQueries      bool              `mapstructure:"log_queries"`
	SeedDemo        bool              `mapstructure:"seed_demo"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Prefix   string        `mapstructure:"prefix"`
}

// AuthConfig captures how callers are identified.
type AuthConfig struct {
	JWT JWTSettings `mapstructure:"jwt"`
	// TrustUserHeader accepts X-User-Id from an authenticating gateway. Never enable it
	// on a publicly reachable listener.
	TrustUserHeader bool `mapstructure:"trust_user_header"`
}

// JWTSettings configures bearer token validation.
type JWTSettings struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"access_token_ttl"`
}

// RateLimitConfig throttles requests per client and route.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Store    string        `mapstructure:"store"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// RealtimeConfig holds the real-time channel settings handed to clients.
type RealtimeConfig struct {
	Negotiation NegotiationConfig `mapstructure:"negotiation"`
}

// NegotiationConfig is returned verbatim by the negotiate endpoint.
type NegotiationConfig struct {
	URL         string `mapstructure:"url"`
	AccessToken string `mapstructure:"access_token"`
	ExpiresIn   int    `mapstructure:"expires_in"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// MaintenanceConfig schedules background jobs.
type MaintenanceConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	UnreadGaugeSchedule string `mapstructure:"unread_gauge_schedule"`
	RatePurgeSchedule   string `mapstructure:"rate_purge_schedule"`
}

// Rate limit store backends.
const (
	RateStoreMemory   = "memory"
	RateStoreRedis    = "redis"
	RateStoreDatabase = "database"
)

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}

	switch strings.ToLower(strings.TrimSpace(c.RateLimit.Store)) {
	case RateStoreMemory, RateStoreDatabase:
	case RateStoreRedis:
		if c.RateLimit.Enabled && !c.Cache.Redis.Enabled {
			return errors.New("config: rate_limit.store=redis requires cache.redis.enabled")
		}
	default:
		return fmt.Errorf("config: unsupported rate_limit.store %q", c.RateLimit.Store)
	}

	if c.Realtime.Negotiation.ExpiresIn < 0 {
		return errors.New("config: realtime.negotiation.expires_in must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/bellcenter.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.name", "")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.max_open_conns", 0)
	v.SetDefault("database.max_idle_conns", 0)
	v.SetDefault("database.conn_max_lifetime", "0s")
	v.SetDefault("database.log_queries", false)
	v.SetDefault("database.seed_demo", false)

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")
	v.SetDefault("cache.redis.prefix", "bellcenter:")

	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "bellcenter")
	v.SetDefault("auth.jwt.audience", "")
	v.SetDefault("auth.jwt.access_token_ttl", "15m")
	v.SetDefault("auth.trust_user_header", false)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.store", RateStoreMemory)
	v.SetDefault("rate_limit.requests", 300)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("realtime.negotiation.url", "")
	v.SetDefault("realtime.negotiation.access_token", "")
	v.SetDefault("realtime.negotiation.expires_in", 3600)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.unread_gauge_schedule", "@every 1m")
	v.SetDefault("maintenance.rate_purge_schedule", "@every 10m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
