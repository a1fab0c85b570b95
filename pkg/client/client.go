// Package client is the Go SDK of the hbond-profiler HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/hbond-profiler/pkg/errors"
)

const Version = "0.1.0"

const requestIDHeader = "X-Request-ID"

// Logger receives the client's diagnostic output.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// retryPolicy bounds the attempts of one call.  Transport errors and 5xx
// responses back off exponentially; 429 waits for Retry-After.
type retryPolicy struct {
	max     int
	waitMin time.Duration
	waitMax time.Duration
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.waitMax
	if attempt < 32 {
		d = p.waitMin << uint(attempt-1)
	}
	if d <= 0 || d > p.waitMax {
		d = p.waitMax
	}
	if d < 4 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d/4)))
}

// Client talks to one hbond-profiler API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     Logger
	retry      retryPolicy

	profiles     *ProfilesClient
	profilesOnce sync.Once
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("hbprof: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, msg, e.RequestID)
}

func (e *APIError) IsNotFound() bool    { return e.StatusCode == http.StatusNotFound }
func (e *APIError) IsBadRequest() bool  { return e.StatusCode == 400 || e.StatusCode == 422 }
func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }
func (e *APIError) IsServerError() bool { return e.StatusCode >= 500 && e.StatusCode < 600 }

// decodeAPIError builds an APIError from a response body.  Bodies that are
// not the server's error document become the message.
func decodeAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{}
	if len(body) > 0 && json.Unmarshal(body, apiErr) != nil {
		apiErr = &APIError{Message: strings.TrimSpace(string(body))}
	}
	apiErr.StatusCode = status
	if apiErr.RequestID == "" {
		apiErr.RequestID = requestID
	}
	return apiErr
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("client: baseURL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.InvalidParam("client: invalid baseURL").WithCause(err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.InvalidParam("client: baseURL scheme must be http or https")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "hbprof-go-sdk/" + Version,
		logger:     noopLogger{},
		retry:      retryPolicy{max: 3, waitMin: 500 * time.Millisecond, waitMax: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Profiles returns the profiling sub-client.
func (c *Client) Profiles() *ProfilesClient {
	c.profilesOnce.Do(func() {
		c.profiles = &ProfilesClient{client: c}
	})
	return c.profiles
}

// attemptResult is the outcome of one HTTP exchange.  wait > 0 asks the
// caller to sleep that long before the next attempt instead of backing off.
type attemptResult struct {
	err   error
	retry bool
	wait  time.Duration
}

// do sends one logical call.  Every attempt carries the same request id so
// server logs can correlate retries.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	requestID := uuid.NewString()

	var last attemptResult
	for attempt := 0; attempt <= c.retry.max; attempt++ {
		if attempt > 0 {
			wait := last.wait
			if wait == 0 {
				wait = c.retry.backoff(attempt)
			}
			c.logger.Debugf("retrying %s %s (attempt %d) in %v", method, path, attempt, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		last = c.attempt(ctx, method, path, requestID, payload, result)
		if last.err == nil || !last.retry {
			return last.err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return last.err
}

func (c *Client) attempt(ctx context.Context, method, path, requestID string, payload []byte, result interface{}) attemptResult {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return attemptResult{err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return attemptResult{err: ctx.Err()}
		}
		c.logger.Errorf("%s %s failed: %v", method, path, err)
		return attemptResult{err: err, retry: true}
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return attemptResult{err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		apiErr := decodeAPIError(resp.StatusCode, requestID, respBody)
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After"))
			if convErr != nil || secs < 0 {
				return attemptResult{err: apiErr}
			}
			c.logger.Infof("rate limited, retrying after %ds", secs)
			return attemptResult{err: apiErr, retry: true, wait: time.Duration(secs) * time.Second}
		case apiErr.IsServerError():
			return attemptResult{err: apiErr, retry: true}
		default:
			return attemptResult{err: apiErr}
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return attemptResult{err: fmt.Errorf("failed to unmarshal response: %w", err)}
		}
	}
	return attemptResult{}
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

//Personal.AI order the ending
