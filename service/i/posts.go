package i

import (
	"context"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/google/uuid"
)

// PostService runs the post workflow on behalf of a user.
type PostService interface {
	Create(ctx context.Context, authorID uuid.UUID, subject, body string) (*dmn.Post, error)
	Update(ctx context.Context, userID, postID uuid.UUID, subject, body *string) (*dmn.Post, error)
	Delete(ctx context.Context, userID, postID uuid.UUID) error
	RequestPublish(ctx context.Context, userID, postID uuid.UUID) (*dmn.Post, error)
	Mine(ctx context.Context, authorID uuid.UUID) ([]*dmn.Post, error)

	// Published and PublishedByID are public.
	Published(ctx context.Context) ([]*dmn.Post, error)
	PublishedByID(ctx context.Context, postID uuid.UUID) (*dmn.Post, error)

	// Publish and PublishRequests need an admin.
	Publish(ctx context.Context, adminID, postID uuid.UUID) (*dmn.Post, error)
	PublishRequests(ctx context.Context, adminID uuid.UUID) ([]*dmn.Post, error)
}

// DraftService manages a user's drafts.
type DraftService interface {
	Create(ctx context.Context, authorID uuid.UUID, subject, body string, postID *uuid.UUID) (*dmn.Draft, error)
	Get(ctx context.Context, userID, draftID uuid.UUID) (*dmn.Draft, error)
	List(ctx context.Context, authorID uuid.UUID) ([]*dmn.Draft, error)
	Update(ctx context.Context, userID, draftID uuid.UUID, subject, body *string) (*dmn.Draft, error)
	Delete(ctx context.Context, userID, draftID uuid.UUID) error
}
