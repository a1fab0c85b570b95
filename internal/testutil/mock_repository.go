package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/hbond-profiler/internal/domain/statistics"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// MockProfileRowRepository is a testify mock of
// statistics.ProfileRowRepository.
type MockProfileRowRepository struct {
	mock.Mock
}

func (m *MockProfileRowRepository) SaveRun(ctx context.Context, run statistics.Run, rows []profile.ProfileRow) error {
	args := m.Called(ctx, run, rows)
	return args.Error(0)
}

func (m *MockProfileRowRepository) GetRun(ctx context.Context, runID string) (*statistics.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*statistics.Run), args.Error(1)
}

func (m *MockProfileRowRepository) FindRowsByRun(ctx context.Context, runID string) ([]profile.ProfileRow, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profile.ProfileRow), args.Error(1)
}

func (m *MockProfileRowRepository) DeleteRun(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

var _ statistics.ProfileRowRepository = (*MockProfileRowRepository)(nil)

//Personal.AI order the ending
