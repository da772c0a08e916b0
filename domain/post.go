package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublishStatus is the position of a post in the publishing workflow.
type PublishStatus string

const (
	StatusUnpublished      PublishStatus = "unpublished"
	StatusPublishRequested PublishStatus = "request_to_admin_for_publish"
	StatusPublished        PublishStatus = "published"
)

// Valid reports whether s is a known status.
func (s PublishStatus) Valid() bool {
	switch s {
	case StatusUnpublished, StatusPublishRequested, StatusPublished:
		return true
	}
	return false
}

// Post is a blog post owned by its author.
type Post struct {
	ID        uuid.UUID     `bson:"_id"`
	AuthorID  uuid.UUID     `bson:"authorId"`
	Subject   string        `bson:"subject"`
	Body      string        `bson:"body"`
	Status    PublishStatus `bson:"status"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

// PostConfig holds parameters for creating a Post.
type PostConfig struct {
	ID       uuid.UUID
	AuthorID uuid.UUID
	Subject  string
	Body     string
	Now      time.Time
}

// NewPost creates an unpublished post.
func NewPost(config PostConfig) (*Post, error) {
	if strings.TrimSpace(config.Subject) == "" {
		return nil, ErrEmptyContent
	}

	now := config.Now.UTC().Truncate(time.Millisecond)
	return &Post{
		ID:        config.ID,
		AuthorID:  config.AuthorID,
		Subject:   config.Subject,
		Body:      config.Body,
		Status:    StatusUnpublished,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// OwnedBy reports whether userID wrote the post.
func (p *Post) OwnedBy(userID uuid.UUID) bool {
	return p.AuthorID == userID
}

// Edit replaces the subject and/or body. Nil leaves a field unchanged.
func (p *Post) Edit(subject, body *string, now time.Time) error {
	if subject != nil {
		if strings.TrimSpace(*subject) == "" {
			return ErrEmptyContent
		}
		p.Subject = *subject
	}
	if body != nil {
		p.Body = *body
	}
	p.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	return nil
}

// RequestPublish asks an admin to publish the post.
func (p *Post) RequestPublish(now time.Time) error {
	return p.transition(StatusUnpublished, StatusPublishRequested, now)
}

// Publish makes a requested post public.
func (p *Post) Publish(now time.Time) error {
	return p.transition(StatusPublishRequested, StatusPublished, now)
}

func (p *Post) transition(from, to PublishStatus, now time.Time) error {
	if p.Status != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, p.Status, to)
	}
	p.Status = to
	p.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	return nil
}
