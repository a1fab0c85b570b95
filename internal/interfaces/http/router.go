// Package http wires the profiling API onto a gin engine and serves it.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/hbond-profiler/internal/interfaces/http/handlers"
	"github.com/turtacn/hbond-profiler/internal/interfaces/http/middleware"
)

// APIPrefix is the path prefix of the versioned API.
const APIPrefix = "/api/v1"

// RouterConfig holds the handlers and middleware settings of the router.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	ProfileHandler *handlers.ProfileHandler
	HealthHandler  *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.AppMetrics

	// MetricsCollector, when set, is scraped at MetricsPath.
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string

	CORS    *middleware.CORSConfig
	Logging middleware.LoggingConfig

	// RateLimiter, when set, limits /api/v1 per RateLimit.KeyFunc.
	RateLimiter middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig

	MaxBodySize int64
}

// NewRouter builds the engine.  Middleware runs in the order recovery,
// request id, CORS, logging, metrics; the API group adds rate limiting and
// the body size cap.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestID())
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group(APIPrefix)
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}
	if cfg.MaxBodySize > 0 {
		api.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}
	if cfg.ProfileHandler != nil {
		cfg.ProfileHandler.RegisterRoutes(api)
	}
	return r
}

//Personal.AI order the ending
