package domain

import "errors"

// User errors.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameConflict  = errors.New("username already taken")
	ErrIncorrectPassword = errors.New("invalid username or password")
	ErrWeakPassword      = errors.New("weak password")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrNotAdmin          = errors.New("you need to be an admin to perform this action")
)

// Post and draft errors.
var (
	ErrPostNotFound            = errors.New("post not found")
	ErrDraftNotFound           = errors.New("draft not found")
	ErrNotOwner                = errors.New("not the author of this resource")
	ErrInvalidStatusTransition = errors.New("invalid publish status transition")
	ErrEmptyContent            = errors.New("content must not be empty")
)
