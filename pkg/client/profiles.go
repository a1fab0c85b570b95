package client

import (
	"context"
	"net/url"

	"github.com/turtacn/hbond-profiler/internal/domain/statistics"
	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// API paths.
const (
	checkPath   = "/api/v1/hbonds/check"
	profilePath = "/api/v1/profiles"
	statsPath   = "/api/v1/profiles/stats"
	runsPath    = "/api/v1/runs/"
)

// StatsResult is the statistics of one set of rows.
type StatsResult struct {
	RunID  string                `json:"run_id,omitempty"`
	Groups int                   `json:"groups"`
	Stats  []statistics.HitStats `json:"stats"`
}

// ProfilesClient calls the hydrogen bond and profiling endpoints.
type ProfilesClient struct {
	client *Client
}

// Check classifies one donor/acceptor pair of a frame.
func (p *ProfilesClient) Check(ctx context.Context, req *profile.CheckRequest) (*profile.CheckResponse, error) {
	if req == nil || len(req.Frame.Members) == 0 {
		return nil, errors.InvalidParam("check request needs a frame with members")
	}
	var resp profile.CheckResponse
	if err := p.client.post(ctx, checkPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile profiles frames on the server.
func (p *ProfilesClient) Profile(ctx context.Context, frames []profile.FrameDTO) (*profile.ProfileResponse, error) {
	if len(frames) == 0 {
		return nil, errors.InvalidParam("at least one frame is required")
	}
	var resp profile.ProfileResponse
	if err := p.client.post(ctx, profilePath, &profile.ProfileRequest{Frames: frames}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats aggregates rows on the server.
func (p *ProfilesClient) Stats(ctx context.Context, req *profile.StatsRequest) (*StatsResult, error) {
	if req == nil {
		return nil, errors.InvalidParam("stats request is required")
	}
	var resp StatsResult
	if err := p.client.post(ctx, statsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunStats returns the statistics of a stored run.
func (p *ProfilesClient) RunStats(ctx context.Context, runID string) (*StatsResult, error) {
	if runID == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	var resp StatsResult
	if err := p.client.get(ctx, runsPath+url.PathEscape(runID)+"/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListExports lists the export objects of a run, with presigned download
// URLs when presign is set.
func (p *ProfilesClient) ListExports(ctx context.Context, runID string, presign bool) (*profile.ExportListResponse, error) {
	if runID == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	path := runsPath + url.PathEscape(runID) + "/exports"
	if presign {
		path += "?presign=true"
	}
	var resp profile.ExportListResponse
	if err := p.client.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteRun removes a run's stored rows and exports.
func (p *ProfilesClient) DeleteRun(ctx context.Context, runID string) (*profile.DeleteRunResponse, error) {
	if runID == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	var resp profile.DeleteRunResponse
	if err := p.client.delete(ctx, runsPath+url.PathEscape(runID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

//Personal.AI order the ending
