package service

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/beka-birhanu/quill-api/workerpool"
	"github.com/google/uuid"
)

// Drafts manages drafts on the database pool.
type Drafts struct {
	db *DBPool
}

var _ i.DraftService = &Drafts{}

// NewDrafts creates the draft use cases.
func NewDrafts(db *DBPool) (*Drafts, error) {
	if db == nil {
		return nil, errors.New("drafts: db pool is required")
	}
	return &Drafts{db: db}, nil
}

func (d *Drafts) Create(ctx context.Context, authorID uuid.UUID, subject, body string, postID *uuid.UUID) (*dmn.Draft, error) {
	return workerpool.Ask[*DB, *dmn.Draft](ctx, d.db, AddDraft{AuthorID: authorID, Subject: subject, Body: body, PostID: postID})
}

func (d *Drafts) Get(ctx context.Context, userID, draftID uuid.UUID) (*dmn.Draft, error) {
	return workerpool.Ask[*DB, *dmn.Draft](ctx, d.db, GetDraft{UserID: userID, DraftID: draftID})
}

func (d *Drafts) List(ctx context.Context, authorID uuid.UUID) ([]*dmn.Draft, error) {
	return workerpool.Ask[*DB, []*dmn.Draft](ctx, d.db, ListDrafts{AuthorID: authorID})
}

func (d *Drafts) Update(ctx context.Context, userID, draftID uuid.UUID, subject, body *string) (*dmn.Draft, error) {
	return workerpool.Ask[*DB, *dmn.Draft](ctx, d.db, UpdateDraft{UserID: userID, DraftID: draftID, Subject: subject, Body: body})
}

func (d *Drafts) Delete(ctx context.Context, userID, draftID uuid.UUID) error {
	_, err := workerpool.Ask[*DB, struct{}](ctx, d.db, DeleteDraft{UserID: userID, DraftID: draftID})
	return err
}
