// Package redis holds the Redis connection and the JSON cache in front of
// run statistics.
package redis

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeInternal, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeCacheError, "redis connection failed")
)

const connectTimeout = 5 * time.Second

// Client is a go-redis client that fails every command once closed.
type Client struct {
	rdb    redis.UniversalClient
	logger logging.Logger
	closed atomic.Bool
}

// NewClient dials the standalone server in cfg and pings it.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	opts := &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  durationOr(cfg.DialTimeout, 5*time.Second),
		ReadTimeout:  durationOr(cfg.ReadTimeout, 3*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 3*time.Second),
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = 10 * runtime.GOMAXPROCS(0)
	}
	c := NewClientWithRDB(redis.NewClient(opts), log)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err)
	}
	c.logger.Info("redis connected", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return c, nil
}

// NewClientWithRDB wraps rdb, typically a redismock client in tests.
func NewClientWithRDB(rdb redis.UniversalClient, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, logger: log}
}

func durationOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection pool on the first call only.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("failed to close redis client", logging.Err(err))
		return err
	}
	c.logger.Info("redis client closed")
	return nil
}

// guarded runs cmd unless the client is closed, in which case it returns
// failed with ErrClientClosed set.
func guarded[C interface{ SetErr(error) }](c *Client, failed C, cmd func() C) C {
	if c.closed.Load() {
		failed.SetErr(ErrClientClosed)
		return failed
	}
	return cmd()
}

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	return guarded(c, redis.NewStringCmd(ctx), func() *redis.StringCmd { return c.rdb.Get(ctx, key) })
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	return guarded(c, redis.NewStatusCmd(ctx), func() *redis.StatusCmd { return c.rdb.Set(ctx, key, value, ttl) })
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return guarded(c, redis.NewIntCmd(ctx), func() *redis.IntCmd { return c.rdb.Del(ctx, keys...) })
}

//Personal.AI order the ending
