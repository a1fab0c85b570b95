package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
)

// LoggingConfig controls RequestLogging.  Requests to SkipPaths are not
// logged; a non-zero SlowThreshold raises successful requests slower than
// it to warn.
type LoggingConfig struct {
	SkipPaths     []string
	SlowThreshold time.Duration
}

// DefaultLoggingConfig skips the health and scrape endpoints.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

func (cfg LoggingConfig) slow(d time.Duration) bool {
	return cfg.SlowThreshold > 0 && d >= cfg.SlowThreshold
}

// RequestLogging writes one entry per request once the handlers are done.
func RequestLogging(logger logging.Logger, cfg LoggingConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		began := time.Now()
		c.Next()
		elapsed := time.Since(began)

		status := c.Writer.Status()
		fields := requestFields(c, status, elapsed)
		switch {
		case status >= 500:
			logger.Error("HTTP request completed with server error", fields...)
		case status >= 400:
			logger.Warn("HTTP request completed with client error", fields...)
		case cfg.slow(elapsed):
			logger.Warn("HTTP request completed (slow)", fields...)
		default:
			logger.Info("HTTP request completed", fields...)
		}
	}
}

func requestFields(c *gin.Context, status int, elapsed time.Duration) []logging.Field {
	req := c.Request
	target := req.URL.Path
	if req.URL.RawQuery != "" {
		target += "?" + req.URL.RawQuery
	}
	fields := make([]logging.Field, 0, 9)
	fields = append(fields,
		logging.String("method", req.Method),
		logging.String("path", target),
		logging.Int("status", status),
		logging.Duration("duration", elapsed),
		logging.Int("bytes", max(c.Writer.Size(), 0)),
		logging.String("remote_addr", c.ClientIP()),
		logging.String("request_id", GetRequestID(c)),
	)
	if ua := req.UserAgent(); ua != "" {
		fields = append(fields, logging.String("user_agent", ua))
	}
	if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
		fields = append(fields, logging.String("errors", errs.String()))
	}
	return fields
}

//Personal.AI order the ending
