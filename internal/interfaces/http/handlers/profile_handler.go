package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/hbond-profiler/internal/application/profiling"
	"github.com/turtacn/hbond-profiler/internal/domain/frame"
	"github.com/turtacn/hbond-profiler/internal/domain/statistics"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// StatsResponse is the statistics of one set of rows.
type StatsResponse struct {
	RunID  string                `json:"run_id,omitempty"`
	Groups int                   `json:"groups"`
	Stats  []statistics.HitStats `json:"stats"`
}

func newStatsResponse(runID string, stats []statistics.HitStats) StatsResponse {
	if stats == nil {
		stats = []statistics.HitStats{}
	}
	return StatsResponse{RunID: runID, Groups: len(stats), Stats: stats}
}

// ProfileHandler serves hydrogen bond checks, profiling runs and their
// statistics and exports.
type ProfileHandler struct {
	svc    profiling.Service
	logger logging.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(svc profiling.Service, logger logging.Logger) *ProfileHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ProfileHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers the API routes on r.
func (h *ProfileHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/hbonds/check", h.Check)
	r.POST("/profiles", h.Profile)
	r.POST("/profiles/stats", h.Stats)
	r.GET("/runs/:id/stats", h.RunStats)
	r.GET("/runs/:id/exports", h.ListExports)
	r.DELETE("/runs/:id", h.DeleteRun)
}

// Check handles POST /hbonds/check.  A rejected pair is a 200 with ok=false.
func (h *ProfileHandler) Check(c *gin.Context) {
	var req profile.CheckRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	f, err := frame.Build(req.Frame)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	resp, err := h.svc.CheckPair(c.Request.Context(), f, req.Donor, req.Acceptor)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// Profile handles POST /profiles.
func (h *ProfileHandler) Profile(c *gin.Context) {
	var req profile.ProfileRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	frames, err := frame.BuildAll(req.Frames)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	prof, err := h.svc.ProfileFrames(c.Request.Context(), frames)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusCreated, prof.Response())
}

// Stats handles POST /profiles/stats.
func (h *ProfileHandler) Stats(c *gin.Context) {
	var req profile.StatsRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	stats, err := h.svc.Statistics(c.Request.Context(), req.RunID, req.Rows)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, newStatsResponse(req.RunID, stats))
}

// RunStats handles GET /runs/:id/stats.
func (h *ProfileHandler) RunStats(c *gin.Context) {
	runID := c.Param("id")
	stats, err := h.svc.RunStatistics(c.Request.Context(), runID)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, newStatsResponse(runID, stats))
}

// ListExports handles GET /runs/:id/exports[?presign=true].
func (h *ProfileHandler) ListExports(c *gin.Context) {
	presign := false
	if v := c.Query("presign"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeAppError(c, h.logger, errors.InvalidParam("presign must be a boolean").WithDetail(v))
			return
		}
		presign = b
	}
	resp, err := h.svc.ListExports(c.Request.Context(), c.Param("id"), presign)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// DeleteRun handles DELETE /runs/:id.
func (h *ProfileHandler) DeleteRun(c *gin.Context) {
	resp, err := h.svc.DeleteRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

//Personal.AI order the ending
