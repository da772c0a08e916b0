package service

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/google/uuid"
)

// AddUser registers a new, non-admin user.
type AddUser struct {
	Username string
	Password string
}

func (m AddUser) Handle(ctx context.Context, db *DB) (*dmn.User, error) {
	if err := dmn.ValidateUsername(m.Username); err != nil {
		return nil, err
	}
	if err := dmn.ValidatePassword(m.Password); err != nil {
		return nil, err
	}

	if _, err := db.Users.ByUsername(ctx, m.Username); err == nil {
		return nil, dmn.ErrUsernameConflict
	} else if !errors.Is(err, dmn.ErrUserNotFound) {
		return nil, err
	}

	hash, err := db.Hasher.Hash([]byte(m.Password))
	if err != nil {
		return nil, err
	}

	user, err := dmn.NewUser(dmn.UserConfig{
		ID:           uuid.New(),
		Username:     m.Username,
		PasswordHash: hash,
		Now:          db.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyCredentials returns the user whose username and password match.
// An unknown username and a wrong password are indistinguishable.
type VerifyCredentials struct {
	Username string
	Password string
}

func (m VerifyCredentials) Handle(ctx context.Context, db *DB) (*dmn.User, error) {
	user, err := db.Users.ByUsername(ctx, m.Username)
	if err != nil {
		if errors.Is(err, dmn.ErrUserNotFound) {
			db.Hasher.Verify([]byte(m.Password), db.unknownUserDigest())
			return nil, dmn.ErrIncorrectPassword
		}
		return nil, err
	}

	if !db.Hasher.Verify([]byte(m.Password), user.PasswordHash) {
		return nil, dmn.ErrIncorrectPassword
	}
	return user, nil
}

// ChangePassword replaces a user's password after checking the current one.
type ChangePassword struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

func (m ChangePassword) Handle(ctx context.Context, db *DB) (*dmn.User, error) {
	user, err := db.Users.ByID(ctx, m.UserID)
	if err != nil {
		return nil, err
	}
	if !db.Hasher.Verify([]byte(m.OldPassword), user.PasswordHash) {
		return nil, dmn.ErrIncorrectPassword
	}
	if err := dmn.ValidatePassword(m.NewPassword); err != nil {
		return nil, err
	}

	hash, err := db.Hasher.Hash([]byte(m.NewPassword))
	if err != nil {
		return nil, err
	}
	user.SetPasswordHash(hash, db.now())

	if err := db.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID loads a user.
type GetUserByID struct {
	ID uuid.UUID
}

func (m GetUserByID) Handle(ctx context.Context, db *DB) (*dmn.User, error) {
	return db.Users.ByID(ctx, m.ID)
}
