package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hbond-profiler/internal/application/profiling"
	"github.com/turtacn/hbond-profiler/internal/domain/frame"
	"github.com/turtacn/hbond-profiler/internal/domain/statistics"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type mockService struct {
	mock.Mock
}

func (m *mockService) ProfileFrames(ctx context.Context, frames []*frame.Frame) (*profiling.Profile, error) {
	args := m.Called(ctx, frames)
	prof, _ := args.Get(0).(*profiling.Profile)
	return prof, args.Error(1)
}

func (m *mockService) Statistics(ctx context.Context, runID string, rows []profile.ProfileRow) ([]statistics.HitStats, error) {
	args := m.Called(ctx, runID, rows)
	stats, _ := args.Get(0).([]statistics.HitStats)
	return stats, args.Error(1)
}

func (m *mockService) RunStatistics(ctx context.Context, runID string) ([]statistics.HitStats, error) {
	args := m.Called(ctx, runID)
	stats, _ := args.Get(0).([]statistics.HitStats)
	return stats, args.Error(1)
}

func (m *mockService) CheckPair(ctx context.Context, f *frame.Frame, donor, acceptor profile.FeatureRef) (*profile.CheckResponse, error) {
	args := m.Called(ctx, f, donor, acceptor)
	resp, _ := args.Get(0).(*profile.CheckResponse)
	return resp, args.Error(1)
}

func (m *mockService) ListExports(ctx context.Context, runID string, presign bool) (*profile.ExportListResponse, error) {
	args := m.Called(ctx, runID, presign)
	resp, _ := args.Get(0).(*profile.ExportListResponse)
	return resp, args.Error(1)
}

func (m *mockService) DeleteRun(ctx context.Context, runID string) (*profile.DeleteRunResponse, error) {
	args := m.Called(ctx, runID)
	resp, _ := args.Get(0).(*profile.DeleteRunResponse)
	return resp, args.Error(1)
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

//Personal.AI order the ending
