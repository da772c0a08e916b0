package service

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/service/authmgr"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/beka-birhanu/quill-api/workerpool"
	"github.com/google/uuid"
)

// AuthPool is the worker pool serving token messages.
type AuthPool = workerpool.Pool[authmgr.Manager[uuid.UUID]]

// Auth handles accounts. Credential checks run on the database pool and
// token work on the auth pool.
type Auth struct {
	db   *DBPool
	auth *AuthPool
}

var _ i.Authenticator = &Auth{}

// NewAuth creates the account use cases.
func NewAuth(db *DBPool, auth *AuthPool) (*Auth, error) {
	if db == nil || auth == nil {
		return nil, errors.New("auth: db and auth pools are required")
	}
	return &Auth{db: db, auth: auth}, nil
}

func (a *Auth) Register(ctx context.Context, username, password string) (*dmn.User, error) {
	return workerpool.Ask[*DB, *dmn.User](ctx, a.db, AddUser{
		Username: username,
		Password: password,
	})
}

func (a *Auth) SignIn(ctx context.Context, username, password string) (*dmn.User, string, error) {
	user, err := workerpool.Ask[*DB, *dmn.User](ctx, a.db, VerifyCredentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := workerpool.Ask[authmgr.Manager[uuid.UUID], string](ctx, a.auth, authmgr.IssueToken[uuid.UUID]{Data: user.ID})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChangePassword leaves previously issued tokens valid until they expire.
func (a *Auth) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	_, err := workerpool.Ask[*DB, *dmn.User](ctx, a.db, ChangePassword{
		UserID:      userID,
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	return err
}

func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (*dmn.User, error) {
	return workerpool.Ask[*DB, *dmn.User](ctx, a.db, GetUserByID{ID: userID})
}

func (a *Auth) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	return workerpool.Ask[authmgr.Manager[uuid.UUID], uuid.UUID](ctx, a.auth, authmgr.ExtractClaims[uuid.UUID]{Token: token})
}
