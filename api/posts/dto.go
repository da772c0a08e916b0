// Package posts serves the post workflow: writing, review requests and publishing.
package posts

import (
	"time"

	dmn "github.com/beka-birhanu/quill-api/domain"
)

// CreateRequest carries a new post.
type CreateRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body"`
}

// UpdateRequest carries the fields to change. Omitted fields stay as they are.
type UpdateRequest struct {
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// PostResponse is the public view of a post.
type PostResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newPostResponse(p *dmn.Post) PostResponse {
	return PostResponse{
		ID:        p.ID.String(),
		AuthorID:  p.AuthorID.String(),
		Subject:   p.Subject,
		Body:      p.Body,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func newPostResponses(posts []*dmn.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, newPostResponse(p))
	}
	return out
}
