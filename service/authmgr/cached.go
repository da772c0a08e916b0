package authmgr

import (
	"context"

	"github.com/beka-birhanu/quill-api/metrics"
	"github.com/beka-birhanu/quill-api/service/i"
)

// cached hands out the last token issued for a principal while it is still
// valid and mints a new one otherwise. Cache failures only cost a re-mint.
type cached[T any] struct {
	Config[T]
	cache i.TokenCache
}

func newCached[T any](c Config[T], tc i.TokenCache) *cached[T] {
	c.Metrics.SetCached(true)
	return &cached[T]{Config: c, cache: tc}
}

func (c *cached[T]) IssueToken(ctx context.Context, data T) (string, error) {
	key := c.key(data)

	if token, ok := c.cache.Get(ctx, key); ok {
		if c.Tokenizer.Valid(token) {
			c.Metrics.Issued(string(ModeCached), metrics.SourceCache)
			return token, nil
		}
		c.Logger.V(1).Info("cached token no longer valid", "key", key)
	}

	token, err := c.Tokenizer.Generate(data, c.Expiration)
	if err != nil {
		return "", err
	}

	// Concurrent issuers may both miss; the last put wins and both tokens stay valid.
	if err := c.cache.Put(ctx, key, token); err != nil {
		c.Logger.V(1).Info("token not cached", "key", key, "error", err.Error())
	}

	c.Metrics.Issued(string(ModeCached), metrics.SourceMinted)
	return token, nil
}

// VerifyToken never consults the cache.
func (c *cached[T]) VerifyToken(token string) bool {
	return c.Tokenizer.Valid(token)
}

func (c *cached[T]) ExtractClaims(token string) (T, error) {
	return c.Tokenizer.Payload(token)
}

func (c *cached[T]) Mode() Mode {
	return ModeCached
}
