package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter decides whether one more request for key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the limiter state reported in response headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	// ResetAt is when the next token becomes available.
	ResetAt time.Time
}

// RateLimitConfig configures RateLimit and the limiter built by NewLimiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// KeyFunc picks the bucket of a request.  Nil keys on the client IP.
	KeyFunc         func(c *gin.Context) string
	SkipPaths       []string
	CleanupInterval time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		KeyFunc:           defaultKeyFunc,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter builds a TokenBucketLimiter from c.
func (c RateLimitConfig) NewLimiter() *TokenBucketLimiter {
	return NewTokenBucketLimiter(c.RequestsPerSecond, c.BurstSize, c.CleanupInterval)
}

// defaultKeyFunc keys on the client IP as resolved by gin's trusted proxies.
func defaultKeyFunc(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// refill adds the tokens earned since the last visit, capped at burst.
func (b *bucket) refill(now time.Time, rate float64, burst int) {
	b.tokens = math.Min(float64(burst), b.tokens+now.Sub(b.seen).Seconds()*rate)
	b.seen = now
}

// TokenBucketLimiter keeps one token bucket per key.  Each bucket starts
// full and earns rate tokens per second up to burst.
type TokenBucketLimiter struct {
	rate  float64
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket

	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewTokenBucketLimiter creates a limiter.  A positive cleanupInterval
// starts a goroutine that drops idle buckets until Stop.
func NewTokenBucketLimiter(rate float64, burst int, cleanupInterval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		rate:            rate,
		burst:           burst,
		buckets:         make(map[string]*bucket),
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), seen: now}
		l.buckets[key] = b
	}
	b.refill(now, l.rate, l.burst)

	allowed := b.tokens >= 1
	if allowed {
		b.tokens--
	}
	info := RateLimitInfo{Limit: l.burst, Remaining: int(b.tokens), ResetAt: now}
	if b.tokens < 1 && l.rate > 0 {
		info.ResetAt = now.Add(time.Duration((1 - b.tokens) / l.rate * float64(time.Second)))
	}
	return allowed, info
}

func (l *TokenBucketLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup drops buckets untouched for a full interval that have refilled
// completely.  A dropped key starts full again, so nothing is forgiven.
func (l *TokenBucketLimiter) cleanup() {
	now := time.Now()
	idleSince := now.Add(-l.cleanupInterval)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if !b.seen.Before(idleSince) {
			continue
		}
		b.refill(now, l.rate, l.burst)
		if b.tokens >= float64(l.burst) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine.  It may be called more than once.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// BucketCount returns the number of tracked keys.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit enforces limiter on every request outside cfg.SkipPaths.
// Checked responses carry X-RateLimit-Limit, -Remaining and -Reset;
// rejected ones get 429 with Retry-After.
func RateLimit(limiter RateLimiter, cfg RateLimitConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = defaultKeyFunc
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		allowed, info := limiter.Allow(keyFunc(c))
		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
		if allowed {
			c.Next()
			return
		}

		wait := int(math.Ceil(time.Until(info.ResetAt).Seconds()))
		if wait < 1 {
			wait = 1
		}
		h.Set("Retry-After", strconv.Itoa(wait))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"code":    "RATE_LIMITED",
			"message": "rate limit exceeded, retry later",
		})
	}
}

//Personal.AI order the ending
