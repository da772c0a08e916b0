package authmgr

import (
	"context"

	"github.com/beka-birhanu/quill-api/workerpool"
)

// NewPool starts size auth workers sharing m.
func NewPool[T any](m Manager[T], size int, opts ...workerpool.Option) (*workerpool.Pool[Manager[T]], error) {
	return workerpool.New("auth", size, func(int) (Manager[T], error) {
		return m, nil
	}, opts...)
}

// IssueToken asks a worker to issue a token for Data.
type IssueToken[T any] struct {
	Data T
}

func (m IssueToken[T]) Handle(ctx context.Context, mgr Manager[T]) (string, error) {
	return mgr.IssueToken(ctx, m.Data)
}

// VerifyToken asks a worker whether Token is valid.
type VerifyToken[T any] struct {
	Token string
}

func (m VerifyToken[T]) Handle(_ context.Context, mgr Manager[T]) (bool, error) {
	return mgr.VerifyToken(m.Token), nil
}

// ExtractClaims asks a worker for the principal carried by Token.
type ExtractClaims[T any] struct {
	Token string
}

func (m ExtractClaims[T]) Handle(_ context.Context, mgr Manager[T]) (T, error) {
	return mgr.ExtractClaims(m.Token)
}
