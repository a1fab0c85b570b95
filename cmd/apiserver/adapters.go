package main

import (
	"github.com/turtacn/hbond-profiler/internal/bootstrap"
	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/hbond-profiler/internal/interfaces/http"
	"github.com/turtacn/hbond-profiler/internal/interfaces/http/handlers"
	"github.com/turtacn/hbond-profiler/internal/interfaces/http/middleware"
)

// healthCheckers adapts the open dependencies for the health handler.
func healthCheckers(infra *bootstrap.Infrastructure) []handlers.HealthChecker {
	checkers := infra.Checkers()
	out := make([]handlers.HealthChecker, 0, len(checkers))
	for _, c := range checkers {
		out = append(out, c)
	}
	return out
}

// routerConfig maps the server configuration onto the router.  The returned
// limiter is nil when rate limiting is off and must be stopped otherwise.
func routerConfig(cfg *config.Config, infra *bootstrap.Infrastructure, logger logging.Logger) (httpserver.RouterConfig, *middleware.TokenBucketLimiter) {
	rc := httpserver.RouterConfig{
		ProfileHandler: handlers.NewProfileHandler(infra.Service, logger.Named("http")),
		HealthHandler:  handlers.NewHealthHandler(version, healthCheckers(infra)...),
		Logger:         logger.Named("http"),
		Metrics:        infra.Metrics,
		Logging:        middleware.DefaultLoggingConfig(),
		MaxBodySize:    cfg.Server.MaxBodySize,
	}
	if cfg.Metrics.Enabled {
		rc.MetricsCollector = infra.Collector
		rc.MetricsPath = cfg.Metrics.Path
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.Server.CORSOrigins
		cors.AllowWildcard = true
		rc.CORS = &cors
	}

	var limiter *middleware.TokenBucketLimiter
	if cfg.Server.RateLimit > 0 {
		rc.RateLimit = middleware.DefaultRateLimitConfig()
		rc.RateLimit.RequestsPerSecond = cfg.Server.RateLimit
		rc.RateLimit.BurstSize = cfg.Server.RateBurst
		limiter = rc.RateLimit.NewLimiter()
		rc.RateLimiter = limiter
	}
	return rc, limiter
}

// watchLogLevel applies log level changes of the config file at runtime.
// Other settings need a restart.
func watchLogLevel(path string, logger logging.Logger) error {
	return config.Watch(path, func(cfg *config.Config) {
		if logging.SetLevel(logger, cfg.Log.Level) {
			logger.Info("log level changed", logging.String("level", cfg.Log.Level))
		}
	}, func(err error) {
		logger.Warn("ignoring invalid config change", logging.Err(err))
	})
}

//Personal.AI order the ending
