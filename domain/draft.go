package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Draft is unfinished writing, optionally tied to an existing post.
type Draft struct {
	ID        uuid.UUID  `bson:"_id"`
	AuthorID  uuid.UUID  `bson:"authorId"`
	Subject   string     `bson:"subject"`
	Body      string     `bson:"body"`
	PostID    *uuid.UUID `bson:"postId,omitempty"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

// DraftConfig holds parameters for creating a Draft.
type DraftConfig struct {
	ID       uuid.UUID
	AuthorID uuid.UUID
	Subject  string
	Body     string
	PostID   *uuid.UUID
	Now      time.Time
}

// NewDraft creates a draft. A draft needs at least a subject or a body.
func NewDraft(config DraftConfig) (*Draft, error) {
	if strings.TrimSpace(config.Subject) == "" && strings.TrimSpace(config.Body) == "" {
		return nil, ErrEmptyContent
	}

	now := config.Now.UTC().Truncate(time.Millisecond)
	return &Draft{
		ID:        config.ID,
		AuthorID:  config.AuthorID,
		Subject:   config.Subject,
		Body:      config.Body,
		PostID:    config.PostID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// OwnedBy reports whether userID wrote the draft.
func (d *Draft) OwnedBy(userID uuid.UUID) bool {
	return d.AuthorID == userID
}

// Edit replaces the subject and/or body. Nil leaves a field unchanged.
func (d *Draft) Edit(subject, body *string, now time.Time) error {
	newSubject, newBody := d.Subject, d.Body
	if subject != nil {
		newSubject = *subject
	}
	if body != nil {
		newBody = *body
	}
	if strings.TrimSpace(newSubject) == "" && strings.TrimSpace(newBody) == "" {
		return ErrEmptyContent
	}

	d.Subject, d.Body = newSubject, newBody
	d.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	return nil
}
