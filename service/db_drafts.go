package service

import (
	"context"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/google/uuid"
)

// AddDraft creates a draft, optionally linked to a post of the same author.
type AddDraft struct {
	AuthorID uuid.UUID
	Subject  string
	Body     string
	PostID   *uuid.UUID
}

func (m AddDraft) Handle(ctx context.Context, db *DB) (*dmn.Draft, error) {
	if m.PostID != nil {
		if _, err := db.ownedPost(ctx, m.AuthorID, *m.PostID); err != nil {
			return nil, err
		}
	}

	draft, err := dmn.NewDraft(dmn.DraftConfig{
		ID:       uuid.New(),
		AuthorID: m.AuthorID,
		Subject:  m.Subject,
		Body:     m.Body,
		PostID:   m.PostID,
		Now:      db.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// GetDraft loads one of the caller's drafts.
type GetDraft struct {
	UserID  uuid.UUID
	DraftID uuid.UUID
}

func (m GetDraft) Handle(ctx context.Context, db *DB) (*dmn.Draft, error) {
	return db.ownedDraft(ctx, m.UserID, m.DraftID)
}

// ListDrafts lists the caller's drafts.
type ListDrafts struct {
	AuthorID uuid.UUID
}

func (m ListDrafts) Handle(ctx context.Context, db *DB) ([]*dmn.Draft, error) {
	return db.Drafts.ByAuthor(ctx, m.AuthorID)
}

// UpdateDraft edits the subject and/or body of the caller's draft.
type UpdateDraft struct {
	UserID  uuid.UUID
	DraftID uuid.UUID
	Subject *string
	Body    *string
}

func (m UpdateDraft) Handle(ctx context.Context, db *DB) (*dmn.Draft, error) {
	draft, err := db.ownedDraft(ctx, m.UserID, m.DraftID)
	if err != nil {
		return nil, err
	}
	if err := draft.Edit(m.Subject, m.Body, db.now()); err != nil {
		return nil, err
	}
	if err := db.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// DeleteDraft removes the caller's draft.
type DeleteDraft struct {
	UserID  uuid.UUID
	DraftID uuid.UUID
}

func (m DeleteDraft) Handle(ctx context.Context, db *DB) (struct{}, error) {
	if _, err := db.ownedDraft(ctx, m.UserID, m.DraftID); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, db.Drafts.Delete(ctx, m.DraftID)
}
