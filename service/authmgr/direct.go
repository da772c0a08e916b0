package authmgr

import (
	"context"

	"github.com/beka-birhanu/quill-api/metrics"
)

// direct mints a fresh token on every issuance.
type direct[T any] struct {
	Config[T]
}

func newDirect[T any](c Config[T]) *direct[T] {
	c.Metrics.SetCached(false)
	return &direct[T]{Config: c}
}

func (d *direct[T]) IssueToken(_ context.Context, data T) (string, error) {
	token, err := d.Tokenizer.Generate(data, d.Expiration)
	if err != nil {
		return "", err
	}
	d.Metrics.Issued(string(ModeDirect), metrics.SourceMinted)
	return token, nil
}

func (d *direct[T]) VerifyToken(token string) bool {
	return d.Tokenizer.Valid(token)
}

func (d *direct[T]) ExtractClaims(token string) (T, error) {
	return d.Tokenizer.Payload(token)
}

func (d *direct[T]) Mode() Mode {
	return ModeDirect
}
