package service

import (
	"context"
	"sync/atomic"
	"testing"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingHasher records how often each operation runs.
type countingHasher struct {
	plainHasher
	hashes   atomic.Int32
	verifies atomic.Int32
}

func (h *countingHasher) Hash(password []byte) (string, error) {
	h.hashes.Add(1)
	return h.plainHasher.Hash(password)
}

func (h *countingHasher) Verify(password []byte, digest string) bool {
	h.verifies.Add(1)
	return h.plainHasher.Verify(password, digest)
}

func TestVerifyCredentialsCostsTheSameForUnknownUsers(t *testing.T) {
	ctx := context.Background()
	hasher := &countingHasher{}
	users := &memUsers{users: map[uuid.UUID]dmn.User{}}
	db := &DB{
		Users:  users,
		Posts:  &memPosts{posts: map[uuid.UUID]dmn.Post{}},
		Drafts: &memDrafts{drafts: map[uuid.UUID]dmn.Draft{}},
		Hasher: hasher,
	}

	_, err := AddUser{Username: "alice", Password: strongPassword}.Handle(ctx, db)
	require.NoError(t, err)
	hasher.verifies.Store(0)

	_, err = VerifyCredentials{Username: "alice", Password: "wrong-password"}.Handle(ctx, db)
	assert.ErrorIs(t, err, dmn.ErrIncorrectPassword)
	assert.EqualValues(t, 1, hasher.verifies.Load())

	hashesBefore := hasher.hashes.Load()
	for range 3 {
		_, err = VerifyCredentials{Username: "nobody", Password: "whatever"}.Handle(ctx, db)
		assert.ErrorIs(t, err, dmn.ErrIncorrectPassword)
	}
	assert.EqualValues(t, 4, hasher.verifies.Load(), "unknown users still run one verification each")
	assert.EqualValues(t, 1, hasher.hashes.Load()-hashesBefore, "placeholder digest is computed once")

	// The placeholder never authenticates anyone.
	_, err = VerifyCredentials{Username: "nobody", Password: dummyPassword}.Handle(ctx, db)
	assert.ErrorIs(t, err, dmn.ErrIncorrectPassword)
}
