package service

import (
	"context"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/google/uuid"
)

// AddPost creates an unpublished post.
type AddPost struct {
	AuthorID uuid.UUID
	Subject  string
	Body     string
}

func (m AddPost) Handle(ctx context.Context, db *DB) (*dmn.Post, error) {
	post, err := dmn.NewPost(dmn.PostConfig{
		ID:       uuid.New(),
		AuthorID: m.AuthorID,
		Subject:  m.Subject,
		Body:     m.Body,
		Now:      db.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Posts.Save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost edits the subject and/or body of the caller's post.
type UpdatePost struct {
	UserID  uuid.UUID
	PostID  uuid.UUID
	Subject *string
	Body    *string
}

func (m UpdatePost) Handle(ctx context.Context, db *DB) (*dmn.Post, error) {
	post, err := db.ownedPost(ctx, m.UserID, m.PostID)
	if err != nil {
		return nil, err
	}
	if err := post.Edit(m.Subject, m.Body, db.now()); err != nil {
		return nil, err
	}
	if err := db.Posts.Save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the caller's post.
type DeletePost struct {
	UserID uuid.UUID
	PostID uuid.UUID
}

func (m DeletePost) Handle(ctx context.Context, db *DB) (struct{}, error) {
	if _, err := db.ownedPost(ctx, m.UserID, m.PostID); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, db.Posts.Delete(ctx, m.PostID)
}

// RequestPublish moves the caller's post into the admin review queue.
type RequestPublish struct {
	UserID uuid.UUID
	PostID uuid.UUID
}

func (m RequestPublish) Handle(ctx context.Context, db *DB) (*dmn.Post, error) {
	post, err := db.ownedPost(ctx, m.UserID, m.PostID)
	if err != nil {
		return nil, err
	}
	if err := post.RequestPublish(db.now()); err != nil {
		return nil, err
	}
	if err := db.Posts.Save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// PublishPost publishes a requested post. Admins only.
type PublishPost struct {
	AdminID uuid.UUID
	PostID  uuid.UUID
}

func (m PublishPost) Handle(ctx context.Context, db *DB) (*dmn.Post, error) {
	if err := db.requireAdmin(ctx, m.AdminID); err != nil {
		return nil, err
	}
	post, err := db.Posts.ByID(ctx, m.PostID)
	if err != nil {
		return nil, err
	}
	if err := post.Publish(db.now()); err != nil {
		return nil, err
	}
	if err := db.Posts.Save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPublishedPosts lists every published post.
type ListPublishedPosts struct{}

func (ListPublishedPosts) Handle(ctx context.Context, db *DB) ([]*dmn.Post, error) {
	return db.Posts.ByStatus(ctx, dmn.StatusPublished)
}

// GetPublishedPost loads one published post. Unpublished posts are reported
// as not found.
type GetPublishedPost struct {
	PostID uuid.UUID
}

func (m GetPublishedPost) Handle(ctx context.Context, db *DB) (*dmn.Post, error) {
	post, err := db.Posts.ByID(ctx, m.PostID)
	if err != nil {
		return nil, err
	}
	if post.Status != dmn.StatusPublished {
		return nil, dmn.ErrPostNotFound
	}
	return post, nil
}

// ListOwnPosts lists every post of the caller regardless of status.
type ListOwnPosts struct {
	AuthorID uuid.UUID
}

func (m ListOwnPosts) Handle(ctx context.Context, db *DB) ([]*dmn.Post, error) {
	return db.Posts.ByAuthor(ctx, m.AuthorID)
}

// ListPublishRequests lists posts waiting for review. Admins only.
type ListPublishRequests struct {
	AdminID uuid.UUID
}

func (m ListPublishRequests) Handle(ctx context.Context, db *DB) ([]*dmn.Post, error) {
	if err := db.requireAdmin(ctx, m.AdminID); err != nil {
		return nil, err
	}
	return db.Posts.ByStatus(ctx, dmn.StatusPublishRequested)
}
