// Package authmgr issues and verifies bearer tokens, optionally reusing the
// last token issued per principal from a cache.
package authmgr

import (
	"context"
	"fmt"
	"time"

	"github.com/beka-birhanu/quill-api/infrastruture/cache"
	"github.com/beka-birhanu/quill-api/metrics"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/go-logr/logr"
)

// Mode is the issuance strategy fixed when a Manager is built.
type Mode string

const (
	ModeDirect Mode = "direct"
	ModeCached Mode = "cached"
)

// Manager issues, verifies and decodes tokens carrying a principal of type T.
type Manager[T any] interface {
	// IssueToken returns a token for data. In cached mode a still valid token
	// previously issued for the same principal is returned unchanged.
	IssueToken(ctx context.Context, data T) (string, error)

	// VerifyToken reports whether token verifies and has not expired.
	VerifyToken(token string) bool

	// ExtractClaims returns the principal carried by token.
	ExtractClaims(token string) (T, error)

	// Mode reports the issuance strategy.
	Mode() Mode
}

// KeyFunc derives the cache key of a principal.
type KeyFunc[T any] func(T) string

// Config holds what every Manager needs.
type Config[T any] struct {
	Tokenizer  i.Tokenizer[T]
	Expiration time.Duration
	KeyFunc    KeyFunc[T] // defaults to fmt.Sprint
	Logger     logr.Logger
	Metrics    *metrics.AuthMetrics
}

func (c Config[T]) validate() error {
	if c.Tokenizer == nil {
		return fmt.Errorf("auth manager: tokenizer is required")
	}
	if c.Expiration <= 0 {
		return fmt.Errorf("auth manager: expiration must be positive, got %s", c.Expiration)
	}
	return nil
}

func (c Config[T]) key(data T) string {
	if c.KeyFunc != nil {
		return c.KeyFunc(data)
	}
	return fmt.Sprint(data)
}

// New builds a Manager. It tries to open the token cache described by
// cacheConfig; if that fails the Manager runs in direct mode for the rest of
// the process lifetime. Only an invalid Config is returned as an error.
func New[T any](ctx context.Context, c Config[T], cacheConfig cache.Config) (Manager[T], error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	if cacheConfig.URL == "" {
		c.Logger.Info("no token cache configured, issuing tokens directly")
		return newDirect(c), nil
	}

	tc, err := cache.NewRedisTokenCache(ctx, cacheConfig)
	if err != nil {
		c.Logger.Error(err, "failed connecting to token cache, falling back to direct issuance")
		return newDirect(c), nil
	}

	c.Logger.Info("token cache connected, issuing tokens with cache")
	return newCached(c, tc), nil
}

// NewDirect builds a Manager that mints a new token on every issuance.
func NewDirect[T any](c Config[T]) (Manager[T], error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return newDirect(c), nil
}

// NewCached builds a Manager backed by tc. The Manager takes ownership of tc.
func NewCached[T any](c Config[T], tc i.TokenCache) (Manager[T], error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if tc == nil {
		return nil, fmt.Errorf("auth manager: token cache is required in cached mode")
	}
	return newCached(c, tc), nil
}

// Close releases the cache held by m, if any.
func Close[T any](m Manager[T]) error {
	if c, ok := m.(*cached[T]); ok {
		return c.cache.Close()
	}
	return nil
}
