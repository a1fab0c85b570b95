package statistics

import (
	"context"
	"time"

	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// Run describes one profiling run.
type Run struct {
	ID             string
	Frames         int
	Hits           int
	DistanceCutoff float64
	AngleCutoff    float64
	CreatedAt      time.Time
}

// ProfileRowRepository persists profiling runs and their rows.
type ProfileRowRepository interface {
	// SaveRun stores run and rows atomically.
	SaveRun(ctx context.Context, run Run, rows []profile.ProfileRow) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	// FindRowsByRun returns the rows of a run ordered by frame then hit.
	FindRowsByRun(ctx context.Context, runID string) ([]profile.ProfileRow, error)
	DeleteRun(ctx context.Context, runID string) error
}

//Personal.AI order the ending
