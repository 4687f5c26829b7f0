package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/bellcenter/internal/app"
	iauth "github.com/charlesng35/bellcenter/internal/auth"
	"github.com/charlesng35/bellcenter/internal/database"
	"github.com/charlesng35/bellcenter/internal/database/testutil"
	"github.com/charlesng35/bellcenter/internal/middleware"
	"github.com/charlesng35/bellcenter/internal/monitoring"
)

func testConfig() *app.Config {
	return &app.Config{
		Server:     app.ServerConfig{Port: 8080},
		Auth:       app.AuthConfig{JWT: app.JWTSettings{Secret: "router-secret", Issuer: "test"}},
		RateLimit:  app.RateLimitConfig{Store: app.RateStoreMemory},
		Monitoring: app.MonitoringConfig{Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"}},
	}
}

func newTestRouter(t *testing.T, cfg *app.Config) (*gin.Engine, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	router, err := NewRouter(db, jwtSvc, cfg, middleware.NewMemoryRateStore())
	require.NoError(t, err)
	return router, jwtSvc
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	_, err := NewRouter(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	router, jwtSvc := newTestRouter(t, testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{UserID: database.DemoUserID})
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	require.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := httptest.NewRecorder()
	router.ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metricsRec.Code)
	require.True(t, strings.Contains(metricsRec.Body.String(), "bellcenter_api_latency_seconds"))
}

func TestRouter_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Monitoring.Prometheus.Enabled = false
	router, _ := newTestRouter(t, cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = app.RateLimitConfig{Enabled: true, Store: app.RateStoreMemory, Requests: 2, Window: time.Minute}
	router, _ := newTestRouter(t, cfg)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRouter_HealthProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	db := testutil.MustOpenTestDB(t)
	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	router, err := NewRouter(db, jwtSvc, cfg, nil, WithHealthProbes(monitoring.Probe{
		Name:  "redis",
		Check: func(context.Context) error { return errors.New("connection refused") },
	}))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "redis")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
