// Package cache keeps recently issued tokens in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/quill-api/metrics"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix   = "token"
	defaultPoolSize = 4
)

// Config holds the parameters for connecting the token cache.
type Config struct {
	URL            string        // redis:// or rediss:// endpoint
	ConnectTimeout time.Duration // dial, pool checkout and per-command deadline
	PoolSize       int           // maximum open connections
	Prefix         string        // key prefix
	Logger         logr.Logger
	Metrics        *metrics.CacheMetrics
}

// RedisTokenCache stores tokens as plain string values without TTL.
// Staleness is the reader's concern: callers decode the token to check expiry.
type RedisTokenCache struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	logger  logr.Logger
	metrics *metrics.CacheMetrics
}

var _ i.TokenCache = &RedisTokenCache{}

// NewRedisTokenCache builds the connection pool and verifies the endpoint answers
// within the connect timeout. Any failure closes the pool and is returned.
func NewRedisTokenCache(ctx context.Context, c Config) (*RedisTokenCache, error) {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	if c.PoolSize <= 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.Prefix == "" {
		c.Prefix = defaultPrefix
	}

	opts.PoolSize = c.PoolSize
	if c.ConnectTimeout > 0 {
		opts.DialTimeout = c.ConnectTimeout
		opts.PoolTimeout = c.ConnectTimeout
		opts.ReadTimeout = c.ConnectTimeout
		opts.WriteTimeout = c.ConnectTimeout
	}
	// A dead cache should cost one attempt, not a retry loop.
	opts.MaxRetries = -1

	client := redis.NewClient(opts)

	pingCtx := ctx
	if c.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, c.ConnectTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisTokenCache{
		client:  client,
		prefix:  c.Prefix,
		timeout: c.ConnectTimeout,
		logger:  c.Logger,
		metrics: c.Metrics,
	}, nil
}

// Get implements i.TokenCache.
func (rc *RedisTokenCache) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := rc.withTimeout(ctx)
	defer cancel()

	val, err := rc.client.Get(ctx, rc.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		rc.logger.V(1).Info("token cache miss", "key", key)
		rc.metrics.Observe(metrics.CacheOpGet, metrics.CacheResultMiss)
		return "", false
	case err != nil:
		rc.logger.V(1).Info("token cache get failed, treating as miss", "key", key, "error", err.Error())
		rc.metrics.Observe(metrics.CacheOpGet, metrics.CacheResultError)
		return "", false
	}

	rc.metrics.Observe(metrics.CacheOpGet, metrics.CacheResultHit)
	return val, true
}

// Put implements i.TokenCache.
func (rc *RedisTokenCache) Put(ctx context.Context, key, token string) error {
	ctx, cancel := rc.withTimeout(ctx)
	defer cancel()

	if err := rc.client.Set(ctx, rc.key(key), token, 0).Err(); err != nil {
		rc.logger.V(1).Info("token cache put failed", "key", key, "error", err.Error())
		rc.metrics.Observe(metrics.CacheOpPut, metrics.CacheResultError)
		return err
	}

	rc.metrics.Observe(metrics.CacheOpPut, metrics.CacheResultOK)
	return nil
}

// Close implements i.TokenCache.
func (rc *RedisTokenCache) Close() error {
	return rc.client.Close()
}

func (rc *RedisTokenCache) key(k string) string {
	return rc.prefix + ":" + k
}

func (rc *RedisTokenCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if rc.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, rc.timeout)
}
