package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	readinessTimeout = 5 * time.Second
	detailTimeout    = 10 * time.Second

	componentHealthy   = "healthy"
	componentUnhealthy = "unhealthy"
)

// HealthChecker is one dependency checked by /readyz and /healthz/detail.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthHandler serves the liveness, readiness and detail checks.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	started  time.Time
}

func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, version: version, started: time.Now()}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	r.GET("/healthz/detail", h.Detailed)
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

type DetailedResponse struct {
	Status     string                    `json:"status"`
	Version    string                    `json:"version"`
	Uptime     string                    `json:"uptime"`
	Components map[string]ComponentCheck `json:"components"`
}

// ComponentCheck is the check result of one dependency.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness answers 200 as long as the process serves requests; it checks
// nothing.
func (h *HealthHandler) Liveness(c *gin.Context) {
	writeJSON(c, http.StatusOK, LivenessResponse{Status: "alive", Version: h.version, Uptime: h.uptime()})
}

// Readiness answers 503 while any dependency fails its check.
func (h *HealthHandler) Readiness(c *gin.Context) {
	resp := ReadinessResponse{Status: "ready"}
	if len(h.checkers) > 0 {
		components, ok := h.checkAll(c.Request.Context(), readinessTimeout)
		resp.Components = components
		if !ok {
			resp.Status = "not_ready"
		}
	}
	writeJSON(c, statusFor(resp.Status == "ready"), resp)
}

func (h *HealthHandler) Detailed(c *gin.Context) {
	components, ok := h.checkAll(c.Request.Context(), detailTimeout)
	resp := DetailedResponse{Status: "healthy", Version: h.version, Uptime: h.uptime(), Components: components}
	if !ok {
		resp.Status = "degraded"
	}
	writeJSON(c, statusFor(ok), resp)
}

func statusFor(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.started).Truncate(time.Second).String()
}

// checkAll runs every dependency in parallel under one deadline and reports
// whether all passed.
func (h *HealthHandler) checkAll(parent context.Context, timeout time.Duration) (map[string]ComponentCheck, bool) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]ComponentCheck, len(h.checkers))
		healthy = true
		g       errgroup.Group
	)
	for _, hc := range h.checkers {
		hc := hc
		g.Go(func() error {
			start := time.Now()
			err := hc.Check(ctx)
			res := ComponentCheck{Status: componentHealthy, Latency: time.Since(start).Truncate(time.Microsecond).String()}
			if err != nil {
				res.Status, res.Error = componentUnhealthy, err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			results[hc.Name()] = res
			healthy = healthy && err == nil
			return nil
		})
	}
	_ = g.Wait()
	return results, healthy
}

//Personal.AI order the ending
