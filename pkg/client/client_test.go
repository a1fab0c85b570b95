package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hbond-profiler/pkg/errors"
)

const fastRetry = time.Millisecond

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

// scripted answers the n-th request (0-based) with statuses[n], repeating
// the last status once the script runs out, and counts calls.
type scripted struct {
	statuses []int
	body     string
	calls    int32
}

func (s *scripted) handler(w http.ResponseWriter, _ *http.Request) {
	n := int(atomic.AddInt32(&s.calls, 1)) - 1
	if n >= len(s.statuses) {
		n = len(s.statuses) - 1
	}
	w.WriteHeader(s.statuses[n])
	if s.body != "" {
		io.WriteString(w, s.body)
	}
}

type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.add(format, args) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.add(format, args) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.add(format, args) }

func (l *testLogger) add(format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *testLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://hbprof.local/")
	require.NoError(t, err)
	assert.Equal(t, "http://hbprof.local", c.baseURL)
	assert.Equal(t, 3, c.retry.max)
	assert.Equal(t, "hbprof-go-sdk/"+Version, c.userAgent)

	for _, bad := range []string{"", "ftp://hbprof.local", "hbprof.local", "http://%zz"} {
		_, err := NewClient(bad)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidParam), bad)
	}
}

func TestNewClient_AppliesOptions(t *testing.T) {
	hc := &http.Client{Timeout: 10 * time.Second}
	logger := &testLogger{}
	c, err := NewClient("https://hbprof.local", WithHTTPClient(hc), WithLogger(logger), WithRetryMax(5))
	require.NoError(t, err)
	assert.Same(t, hc, c.httpClient)
	assert.Same(t, logger, c.logger)
	assert.Equal(t, 5, c.retry.max)
}

func TestClient_ProfilesIsShared(t *testing.T) {
	c, _ := NewClient("http://hbprof.local")
	got := make([]*ProfilesClient, 32)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = c.Profiles()
		}(i)
	}
	wg.Wait()
	for _, p := range got {
		assert.Same(t, got[0], p)
	}
}

func TestClient_Do_DecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs/r1/stats", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "hbprof-go-sdk/")
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))
		io.WriteString(w, `{"run_id":"r1","groups":2}`)
	})

	var out StatsResult
	require.NoError(t, c.get(context.Background(), "api/v1/runs/r1/stats", &out))
	assert.Equal(t, "r1", out.RunID)
	assert.Equal(t, 2, out.Groups)
}

func TestClient_Do_EmptyBodyAndNilResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Zero(t, r.ContentLength)
		io.WriteString(w, `{"ignored":true}`)
	})
	assert.NoError(t, c.get(context.Background(), "/healthz", nil))
}

func TestClient_Do_RetryBehaviour(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		retryMax   int
		wantStatus int
		wantCalls  int32
	}{
		{"ok first time", []int{200}, 3, 0, 1},
		{"5xx then ok", []int{503, 502, 200}, 3, 0, 3},
		{"5xx exhausted", []int{500}, 2, 500, 3},
		{"retries disabled", []int{500, 200}, 0, 500, 1},
		{"4xx is final", []int{400, 200}, 3, 400, 1},
		{"404 is final", []int{404, 200}, 3, 404, 1},
		{"429 without Retry-After is final", []int{429, 200}, 3, 429, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scripted{statuses: tt.statuses}
			c := newTestClient(t, s.handler, WithRetryMax(tt.retryMax), WithRetryWait(fastRetry, 2*fastRetry))

			err := c.get(context.Background(), "/x", nil)
			if tt.wantStatus != 0 {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&s.calls))
		})
	}
}

func TestClient_Do_RetryResendsBodyWithSameRequestID(t *testing.T) {
	var (
		mu     sync.Mutex
		ids    []string
		bodies []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		ids = append(ids, r.Header.Get(requestIDHeader))
		bodies = append(bodies, string(b))
		first := len(ids) == 1
		mu.Unlock()
		if first {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(b)
	}, WithRetryWait(fastRetry, 2*fastRetry))

	var out struct {
		ProfileID string `json:"profile_id"`
	}
	require.NoError(t, c.post(context.Background(), "/x", map[string]string{"profile_id": "f7"}, &out))
	assert.Equal(t, "f7", out.ProfileID)
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
	assert.JSONEq(t, bodies[0], bodies[1])
}

func TestClient_Do_NewRequestIDPerCall(t *testing.T) {
	ids := make(chan string, 2)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get(requestIDHeader)
	})
	require.NoError(t, c.get(context.Background(), "/x", nil))
	require.NoError(t, c.get(context.Background(), "/x", nil))
	assert.NotEqual(t, <-ids, <-ids)
}

func TestClient_Do_429HonoursRetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		}
	})

	start := time.Now()
	require.NoError(t, c.get(context.Background(), "/x", nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestClient_Do_ErrorDocuments(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   APIError
	}{
		{
			name:   "server error document",
			status: http.StatusBadRequest,
			body:   `{"code":"COMMON_002","message":"invalid parameter","detail":"frames: empty","request_id":"srv-1"}`,
			want:   APIError{StatusCode: 400, Code: "COMMON_002", Message: "invalid parameter", Detail: "frames: empty", RequestID: "srv-1"},
		},
		{
			name:   "document without request id",
			status: http.StatusNotFound,
			body:   `{"code":"COMMON_005","message":"profile run not found"}`,
			want:   APIError{StatusCode: 404, Code: "COMMON_005", Message: "profile run not found"},
		},
		{
			name:   "plain text",
			status: http.StatusRequestEntityTooLarge,
			body:   "too large\n",
			want:   APIError{StatusCode: 413, Message: "too large"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scripted{statuses: []int{tt.status}, body: tt.body}
			c := newTestClient(t, s.handler)

			var apiErr *APIError
			require.ErrorAs(t, c.get(context.Background(), "/x", nil), &apiErr)
			assert.Equal(t, tt.want.StatusCode, apiErr.StatusCode)
			assert.Equal(t, tt.want.Code, apiErr.Code)
			assert.Equal(t, tt.want.Message, apiErr.Message)
			assert.Equal(t, tt.want.Detail, apiErr.Detail)
			if tt.want.RequestID != "" {
				assert.Equal(t, tt.want.RequestID, apiErr.RequestID)
			} else {
				assert.NotEmpty(t, apiErr.RequestID)
			}
		})
	}
}

func TestClient_Do_TransportErrorIsLoggedAndRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	logger := &testLogger{}
	c, err := NewClient(srv.URL, WithRetryMax(1), WithRetryWait(fastRetry, 2*fastRetry), WithLogger(logger))
	require.NoError(t, err)
	assert.Error(t, c.get(context.Background(), "/x", nil))
	assert.GreaterOrEqual(t, logger.count(), 2)
}

func TestClient_Do_Context(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	assert.ErrorIs(t, c.get(canceled, "/x", nil), context.Canceled)

	slow := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, slow.get(ctx, "/x", nil), context.DeadlineExceeded)
}

func TestAPIError(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 404}).IsNotFound())
	assert.True(t, (&APIError{StatusCode: 422}).IsBadRequest())
	assert.True(t, (&APIError{StatusCode: 429}).IsRateLimited())
	assert.True(t, (&APIError{StatusCode: 503}).IsServerError())
	assert.False(t, (&APIError{StatusCode: 400}).IsServerError())

	e := &APIError{StatusCode: 400, Code: "HB_001", Message: "feature has no atoms", RequestID: "id"}
	assert.Equal(t, "hbprof: HB_001 (HTTP 400): feature has no atoms [request_id=id]", e.Error())
	e.Detail = "donor"
	assert.Equal(t, "hbprof: HB_001 (HTTP 400): feature has no atoms: donor [request_id=id]", e.Error())
}

func TestRetryPolicy_BackoffCapped(t *testing.T) {
	p := retryPolicy{max: 3, waitMin: 100 * time.Millisecond, waitMax: 300 * time.Millisecond}
	for attempt := 1; attempt <= 40; attempt++ {
		d := p.backoff(attempt)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 300*time.Millisecond+75*time.Millisecond)
	}
}

//Personal.AI order the ending
