package i

import (
	"context"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/google/uuid"
)

// UserRepo defines the interface for user persistence operations.
type UserRepo interface {
	// Save inserts or updates a user in the repository.
	// If the user already exists, it updates the record. Otherwise, it creates a new one.
	// A username taken by another user yields dmn.ErrUsernameConflict.
	Save(ctx context.Context, user *dmn.User) error

	// ByID retrieves a user by their unique ID.
	// Returns dmn.ErrUserNotFound if no user has that ID.
	ByID(ctx context.Context, id uuid.UUID) (*dmn.User, error)

	// ByUsername retrieves a user by their username.
	// Returns dmn.ErrUserNotFound if no user has that username.
	ByUsername(ctx context.Context, username string) (*dmn.User, error)
}

// PostRepo defines the interface for post persistence operations.
type PostRepo interface {
	// Save inserts or replaces a post.
	Save(ctx context.Context, post *dmn.Post) error

	// ByID returns dmn.ErrPostNotFound if no post has that ID.
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Post, error)

	// ByStatus lists posts in status, newest first.
	ByStatus(ctx context.Context, status dmn.PublishStatus) ([]*dmn.Post, error)

	// ByAuthor lists posts written by authorID, newest first.
	ByAuthor(ctx context.Context, authorID uuid.UUID) ([]*dmn.Post, error)

	// Delete returns dmn.ErrPostNotFound if no post has that ID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// DraftRepo defines the interface for draft persistence operations.
type DraftRepo interface {
	Save(ctx context.Context, draft *dmn.Draft) error
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Draft, error)
	ByAuthor(ctx context.Context, authorID uuid.UUID) ([]*dmn.Draft, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
