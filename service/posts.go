package service

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/beka-birhanu/quill-api/workerpool"
	"github.com/google/uuid"
)

// Posts runs the post workflow on the database pool.
type Posts struct {
	db *DBPool
}

var _ i.PostService = &Posts{}

// NewPosts creates the post use cases.
func NewPosts(db *DBPool) (*Posts, error) {
	if db == nil {
		return nil, errors.New("posts: db pool is required")
	}
	return &Posts{db: db}, nil
}

func (p *Posts) Create(ctx context.Context, authorID uuid.UUID, subject, body string) (*dmn.Post, error) {
	return workerpool.Ask[*DB, *dmn.Post](ctx, p.db, AddPost{AuthorID: authorID, Subject: subject, Body: body})
}

func (p *Posts) Update(ctx context.Context, userID, postID uuid.UUID, subject, body *string) (*dmn.Post, error) {
	return workerpool.Ask[*DB, *dmn.Post](ctx, p.db, UpdatePost{UserID: userID, PostID: postID, Subject: subject, Body: body})
}

func (p *Posts) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	_, err := workerpool.Ask[*DB, struct{}](ctx, p.db, DeletePost{UserID: userID, PostID: postID})
	return err
}

func (p *Posts) RequestPublish(ctx context.Context, userID, postID uuid.UUID) (*dmn.Post, error) {
	return workerpool.Ask[*DB, *dmn.Post](ctx, p.db, RequestPublish{UserID: userID, PostID: postID})
}

func (p *Posts) Mine(ctx context.Context, authorID uuid.UUID) ([]*dmn.Post, error) {
	return workerpool.Ask[*DB, []*dmn.Post](ctx, p.db, ListOwnPosts{AuthorID: authorID})
}

func (p *Posts) Published(ctx context.Context) ([]*dmn.Post, error) {
	return workerpool.Ask[*DB, []*dmn.Post](ctx, p.db, ListPublishedPosts{})
}

func (p *Posts) PublishedByID(ctx context.Context, postID uuid.UUID) (*dmn.Post, error) {
	return workerpool.Ask[*DB, *dmn.Post](ctx, p.db, GetPublishedPost{PostID: postID})
}

func (p *Posts) Publish(ctx context.Context, adminID, postID uuid.UUID) (*dmn.Post, error) {
	return workerpool.Ask[*DB, *dmn.Post](ctx, p.db, PublishPost{AdminID: adminID, PostID: postID})
}

func (p *Posts) PublishRequests(ctx context.Context, adminID uuid.UUID) ([]*dmn.Post, error) {
	return workerpool.Ask[*DB, []*dmn.Post](ctx, p.db, ListPublishRequests{AdminID: adminID})
}
