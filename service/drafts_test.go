package service

import (
	"context"
	"testing"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrafts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.register(t, "author")
	other := f.register(t, "reader")

	post, err := f.post.Create(ctx, author.ID, "Post", "body")
	require.NoError(t, err)

	t.Run("create linked to own post", func(t *testing.T) {
		d, err := f.draft.Create(ctx, author.ID, "Next version", "", &post.ID)
		require.NoError(t, err)
		require.NotNil(t, d.PostID)
		assert.Equal(t, post.ID, *d.PostID)
	})

	t.Run("cannot link to someone else's post", func(t *testing.T) {
		_, err := f.draft.Create(ctx, other.ID, "Steal", "", &post.ID)
		assert.ErrorIs(t, err, dmn.ErrNotOwner)

		missing := uuid.New()
		_, err = f.draft.Create(ctx, author.ID, "Ghost", "", &missing)
		assert.ErrorIs(t, err, dmn.ErrPostNotFound)
	})

	t.Run("empty draft", func(t *testing.T) {
		_, err := f.draft.Create(ctx, author.ID, "", " ", nil)
		assert.ErrorIs(t, err, dmn.ErrEmptyContent)
	})

	t.Run("get, update, list and delete own drafts", func(t *testing.T) {
		d, err := f.draft.Create(ctx, author.ID, "Idea", "", nil)
		require.NoError(t, err)

		_, err = f.draft.Get(ctx, other.ID, d.ID)
		assert.ErrorIs(t, err, dmn.ErrNotOwner)

		got, err := f.draft.Get(ctx, author.ID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, "Idea", got.Subject)

		body := "Fleshed out"
		updated, err := f.draft.Update(ctx, author.ID, d.ID, nil, &body)
		require.NoError(t, err)
		assert.Equal(t, "Fleshed out", updated.Body)

		_, err = f.draft.Update(ctx, other.ID, d.ID, nil, &body)
		assert.ErrorIs(t, err, dmn.ErrNotOwner)

		list, err := f.draft.List(ctx, author.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		none, err := f.draft.List(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, none)

		assert.ErrorIs(t, f.draft.Delete(ctx, other.ID, d.ID), dmn.ErrNotOwner)
		require.NoError(t, f.draft.Delete(ctx, author.ID, d.ID))
		_, err = f.draft.Get(ctx, author.ID, d.ID)
		assert.ErrorIs(t, err, dmn.ErrDraftNotFound)
	})
}
