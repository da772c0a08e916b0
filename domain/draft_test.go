package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraft(t *testing.T) {
	postID := uuid.New()
	d, err := NewDraft(DraftConfig{ID: uuid.New(), AuthorID: uuid.New(), Body: "only a body", PostID: &postID, Now: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, &postID, d.PostID)
	assert.True(t, d.OwnedBy(d.AuthorID))

	_, err = NewDraft(DraftConfig{ID: uuid.New(), AuthorID: uuid.New(), Now: time.Now()})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestDraftEdit(t *testing.T) {
	d, err := NewDraft(DraftConfig{ID: uuid.New(), AuthorID: uuid.New(), Subject: "s", Body: "b", Now: time.Now()})
	require.NoError(t, err)

	empty := ""
	require.NoError(t, d.Edit(&empty, nil, time.Now()))
	assert.Equal(t, "", d.Subject)
	assert.Equal(t, "b", d.Body)

	assert.ErrorIs(t, d.Edit(nil, &empty, time.Now()), ErrEmptyContent)
	assert.Equal(t, "b", d.Body)
}
