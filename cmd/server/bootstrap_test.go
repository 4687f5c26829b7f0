package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/bellcenter/internal/app"
	iauth "github.com/charlesng35/bellcenter/internal/auth"
	"github.com/charlesng35/bellcenter/internal/cache"
	"github.com/charlesng35/bellcenter/internal/database"
	"github.com/charlesng35/bellcenter/internal/database/testutil"
)

func testRuntimeConfig() *app.Config {
	return &app.Config{
		Server: app.ServerConfig{Port: 8080},
		Database: app.DatabaseConfig{
			Driver:   "sqlite",
			DSN:      database.MemoryDSN("bootstrap-" + uuid.NewString()),
			SeedDemo: true,
		},
		Auth:      app.AuthConfig{JWT: app.JWTSettings{Secret: "bootstrap-secret", Issuer: "bellcenter"}},
		RateLimit: app.RateLimitConfig{Enabled: true, Store: app.RateStoreDatabase, Requests: 100, Window: time.Minute},
		Maintenance: app.MaintenanceConfig{
			Enabled:             true,
			UnreadGaugeSchedule: "@every 1h",
			RatePurgeSchedule:   "@every 1h",
		},
	}
}

func TestBootstrapRuntimeServesInbox(t *testing.T) {
	cfg := testRuntimeConfig()

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.Scheduler)

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)
	token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{UserID: database.DemoUserID})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	stack.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"unread_total":3`)
}

func TestBootstrapRuntimeFailsOnUnknownDriver(t *testing.T) {
	cfg := testRuntimeConfig()
	cfg.Database.Driver = "oracle"

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestSelectRateStore(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	cfg := testRuntimeConfig()

	store, counters := selectRateStore(cfg, db, nil, zap.NewNop())
	require.NotNil(t, store)
	require.NotNil(t, counters)

	cfg.RateLimit.Store = app.RateStoreMemory
	store, counters = selectRateStore(cfg, db, nil, zap.NewNop())
	require.NotNil(t, store)
	require.Nil(t, counters)

	cfg.RateLimit.Store = app.RateStoreRedis
	store, counters = selectRateStore(cfg, db, nil, zap.NewNop())
	require.NotNil(t, store)
	require.Nil(t, counters)

	srv := miniredis.RunT(t)
	redis, err := cache.NewRedisStore(context.Background(), cache.RedisConfig{Address: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redis.Close() })

	store, _ = selectRateStore(cfg, db, redis, zap.NewNop())
	count, _, err := store.Increment(context.Background(), "rl:test", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.True(t, srv.Exists("bellcenter:rl:test"))
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "does not exist")
}

func TestRunIssuesToken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"auth:\n  jwt:\n    secret: cli-secret\n    issuer: cli\n"), 0o600))

	var out bytes.Buffer
	userID := uuid.NewString()
	err := run(context.Background(), []string{"-config", dir, "-env-file", "", "-issue-token", userID}, &out)
	require.NoError(t, err)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "cli-secret", Issuer: "cli"})
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateAccessToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	require.Equal(t, userID, claims.Identity())
}

func TestLoadEnvFileIgnoresMissingFile(t *testing.T) {
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
	require.NoError(t, loadEnvFile(""))
}

func TestLoadEnvFileSetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BELLCENTER_TEST_ONLY=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BELLCENTER_TEST_ONLY") })

	require.NoError(t, loadEnvFile(path))
	require.Equal(t, "loaded", os.Getenv("BELLCENTER_TEST_ONLY"))
}
