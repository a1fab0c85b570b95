package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hbond-profiler/internal/application/profiling"
	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/hbond-profiler/internal/interfaces/http/handlers"
	"github.com/turtacn/hbond-profiler/internal/interfaces/http/middleware"
	"github.com/turtacn/hbond-profiler/internal/testutil"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newService(t *testing.T) profiling.Service {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	svc, err := profiling.NewService(profiling.ConfigFrom(cfg))
	require.NoError(t, err)
	return svc
}

func fullRouter(t *testing.T) (*gin.Engine, *testutil.MockLogger) {
	t.Helper()
	logger := testutil.NewMockLogger()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "routertest"}, logger)
	require.NoError(t, err)
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = []string{"https://app.example.com"}

	r := NewRouter(RouterConfig{
		ProfileHandler:   handlers.NewProfileHandler(newService(t), logger),
		HealthHandler:    handlers.NewHealthHandler("test"),
		Logger:           logger,
		Metrics:          prometheus.NewAppMetrics(collector),
		MetricsCollector: collector,
		CORS:             &cors,
		Logging:          middleware.DefaultLoggingConfig(),
		MaxBodySize:      1 << 20,
	})
	return r, logger
}

func request(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewRouter_Routes(t *testing.T) {
	r, _ := fullRouter(t)
	routes := map[string]bool{}
	for _, ri := range r.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /readyz",
		"GET /healthz/detail",
		"GET /metrics",
		"POST /api/v1/hbonds/check",
		"POST /api/v1/profiles",
		"POST /api/v1/profiles/stats",
		"GET /api/v1/runs/:id/stats",
		"GET /api/v1/runs/:id/exports",
		"DELETE /api/v1/runs/:id",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestNewRouter_NilHandlers(t *testing.T) {
	r := NewRouter(RouterConfig{})
	assert.Empty(t, r.Routes())
	assert.Equal(t, http.StatusNotFound, request(r, http.MethodGet, "/healthz", "").Code)
}

func TestNewRouter_ProfileEndToEnd(t *testing.T) {
	r, logger := fullRouter(t)

	frames := `{"frames": [` + mustJSON(t, testutil.HydrogenBondFrame("f0", 2.8, 0)) + `]}`
	w := request(r, http.MethodPost, "/api/v1/profiles", frames)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	assert.Contains(t, w.Body.String(), `"hits":1`)
	assert.True(t, logger.HasMessage("info", "HTTP request completed"))

	scrape := request(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(), `path="/api/v1/profiles",status="201"`)
}

func TestNewRouter_FeatureDisabled(t *testing.T) {
	r, _ := fullRouter(t)
	w := request(r, http.MethodGet, "/api/v1/runs/abc/stats", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "COMMON_015")
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	r, _ := fullRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/profiles", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_RateLimitedAPIOnly(t *testing.T) {
	r := NewRouter(RouterConfig{
		ProfileHandler: handlers.NewProfileHandler(newService(t), nil),
		HealthHandler:  handlers.NewHealthHandler("test"),
		RateLimiter:    middleware.NewTokenBucketLimiter(0.001, 1, 0),
	})

	assert.Equal(t, http.StatusForbidden, request(r, http.MethodGet, "/api/v1/runs/a/stats", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(r, http.MethodGet, "/api/v1/runs/a/stats", "").Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/healthz", "").Code)
}

func TestServer_StartStop(t *testing.T) {
	r := NewRouter(RouterConfig{HealthHandler: handlers.NewHealthHandler("test")})
	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, r, testutil.NewMockLogger())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	require.Eventually(t, func() bool { return srv.Addr() != "127.0.0.1:0" }, time.Second, 5*time.Millisecond)
	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.NoError(t, <-done)
}

func TestServer_StartListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: port}, http.NotFoundHandler(), nil)
	assert.Error(t, srv.Start())
}

func mustJSON(t *testing.T, dto profile.FrameDTO) string {
	t.Helper()
	b, err := json.Marshal(dto)
	require.NoError(t, err)
	return string(b)
}

//Personal.AI order the ending
