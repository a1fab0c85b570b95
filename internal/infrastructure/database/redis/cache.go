package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// nullMarker records that the loader produced nothing, so the next lookup
// misses without calling it again.
const nullMarker = "__null__"

// errNullEntry is a lookup that found nullMarker.  Get reports it as
// ErrCacheMiss; GetOrSet uses it to skip the loader.
var errNullEntry = errors.New(errors.ErrCodeNotFound, "cached empty result")

// Cache stores JSON values under a key prefix.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	Ping(ctx context.Context) error
}

type redisCache struct {
	client  *Client
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	prefix  string
	ttl     time.Duration
	nullTTL time.Duration
	spread  func(time.Duration) time.Duration
	loads   singleflight.Group
}

type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption           { return func(c *redisCache) { c.prefix = prefix } }
func WithDefaultTTL(ttl time.Duration) CacheOption   { return func(c *redisCache) { c.ttl = ttl } }
func WithNullCacheTTL(ttl time.Duration) CacheOption { return func(c *redisCache) { c.nullTTL = ttl } }

func WithMetrics(m *prometheus.AppMetrics) CacheOption {
	return func(c *redisCache) { c.metrics = m }
}

// WithoutJitter keeps TTLs exact.
func WithoutJitter() CacheOption {
	return func(c *redisCache) { c.spread = func(ttl time.Duration) time.Duration { return ttl } }
}

func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{
		client:  client,
		logger:  log,
		prefix:  "hbprof:",
		ttl:     30 * time.Minute,
		nullTTL: 30 * time.Second,
		spread:  jitterTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// jitterTTL moves ttl by up to 10% either way so entries written together
// do not expire together.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	return ttl + time.Duration(float64(ttl)*0.1*(2*rand.Float64()-1))
}

func (c *redisCache) key(k string) string { return c.prefix + k }

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.lookup(ctx, key, dest); err != errNullEntry {
		return err
	}
	return ErrCacheMiss
}

func (c *redisCache) lookup(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case err == redis.Nil:
		c.metrics.RecordCacheAccess("get", "miss")
		return ErrCacheMiss
	case err == nil && string(data) == nullMarker:
		c.metrics.RecordCacheAccess("get", "miss")
		return errNullEntry
	case err != nil:
		c.metrics.RecordCacheAccess("get", "error")
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.metrics.RecordCacheAccess("get", "error")
		return ErrSerializationFailed.WithCause(err)
	}
	c.metrics.RecordCacheAccess("get", "hit")
	return nil
}

// Set stores value as JSON.  A zero ttl uses the cache default.
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	if err := c.client.Set(ctx, c.key(key), data, c.spread(ttl)).Err(); err != nil {
		c.metrics.RecordCacheAccess("set", "error")
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache entry")
	}
	c.metrics.RecordCacheAccess("set", "ok")
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete cache entries")
	}
	return nil
}

// GetOrSet serves key from the cache or calls loader once for all
// concurrent misses of key.  A nil load is remembered for the null TTL and
// reported as ErrCacheMiss.
func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	switch err := c.lookup(ctx, key, dest); err {
	case errNullEntry:
		return ErrCacheMiss
	case ErrCacheMiss:
	default:
		return err
	}

	v, err, _ := c.loads.Do(key, func() (interface{}, error) {
		v, err := loader(ctx)
		switch {
		case err != nil:
			return nil, err
		case v == nil:
			if err := c.client.Set(ctx, c.key(key), nullMarker, c.nullTTL).Err(); err != nil {
				c.metrics.RecordCacheAccess("set", "error")
				c.logger.Warn("cache fill failed", logging.String("key", key), logging.Err(err))
			}
			return nil, nil
		}
		if err := c.Set(ctx, key, v, ttl); err != nil {
			c.logger.Warn("cache fill failed", logging.String("key", key), logging.Err(err))
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	if v == nil {
		return ErrCacheMiss
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return json.Unmarshal(data, dest)
}

// Ping reports whether the backing server answers.
func (c *redisCache) Ping(ctx context.Context) error { return c.client.Ping(ctx) }

//Personal.AI order the ending
