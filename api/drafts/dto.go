// Package drafts serves a user's drafts.
package drafts

import (
	"time"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/google/uuid"
)

// CreateRequest carries a new draft.
type CreateRequest struct {
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	PostID  *uuid.UUID `json:"post_id"`
}

// UpdateRequest carries the fields to change. Omitted fields stay as they are.
type UpdateRequest struct {
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// DraftResponse is the owner's view of a draft.
type DraftResponse struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	PostID    *string   `json:"post_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newDraftResponse(d *dmn.Draft) DraftResponse {
	r := DraftResponse{
		ID:        d.ID.String(),
		Subject:   d.Subject,
		Body:      d.Body,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.PostID != nil {
		s := d.PostID.String()
		r.PostID = &s
	}
	return r
}
