package i

import (
	"context"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/google/uuid"
)

// TokenAuthenticator resolves a bearer token to the user it was issued for.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticator manages accounts and credentials.
type Authenticator interface {
	TokenAuthenticator

	// Register creates a new user.
	Register(ctx context.Context, username, password string) (*dmn.User, error)

	// SignIn checks the credentials and returns the user with a bearer token.
	SignIn(ctx context.Context, username, password string) (*dmn.User, string, error)

	// ChangePassword replaces the password of userID after checking oldPassword.
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error

	// Me returns the profile of userID.
	Me(ctx context.Context, userID uuid.UUID) (*dmn.User, error)
}
