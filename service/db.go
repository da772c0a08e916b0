package service

import (
	"context"
	"errors"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/beka-birhanu/quill-api/workerpool"
	"github.com/google/uuid"
)

// DB is the resource owned by each database worker. Password hashing runs
// here too so it never blocks the HTTP layer.
type DB struct {
	Users  i.UserRepo
	Posts  i.PostRepo
	Drafts i.DraftRepo
	Hasher i.PasswordHasher
	Clock  func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

// dummyPassword is hashed once so unknown usernames cost the same to reject
// as wrong passwords.
const dummyPassword = "quill-unknown-user-placeholder"

func (db *DB) unknownUserDigest() string {
	db.dummyOnce.Do(func() {
		// On failure the digest stays empty and Verify fails fast.
		db.dummyDigest, _ = db.Hasher.Hash([]byte(dummyPassword))
	})
	return db.dummyDigest
}

// DBPool is the worker pool serving database messages.
type DBPool = workerpool.Pool[*DB]

// NewDBPool starts size database workers sharing db. The repositories are
// backed by the driver's own connection pool.
func NewDBPool(db *DB, size int, opts ...workerpool.Option) (*DBPool, error) {
	if db.Users == nil || db.Posts == nil || db.Drafts == nil || db.Hasher == nil {
		return nil, errors.New("db pool: repositories and hasher are required")
	}
	return workerpool.New("db", size, func(int) (*DB, error) {
		return db, nil
	}, opts...)
}

func (db *DB) now() time.Time {
	if db.Clock != nil {
		return db.Clock()
	}
	return time.Now()
}

func (db *DB) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	user, err := db.Users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, dmn.ErrUserNotFound) {
			return dmn.ErrNotAdmin
		}
		return err
	}
	if !user.IsAdmin {
		return dmn.ErrNotAdmin
	}
	return nil
}

func (db *DB) ownedPost(ctx context.Context, userID, postID uuid.UUID) (*dmn.Post, error) {
	post, err := db.Posts.ByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.OwnedBy(userID) {
		return nil, dmn.ErrNotOwner
	}
	return post, nil
}

func (db *DB) ownedDraft(ctx context.Context, userID, draftID uuid.UUID) (*dmn.Draft, error) {
	draft, err := db.Drafts.ByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if !draft.OwnedBy(userID) {
		return nil, dmn.ErrNotOwner
	}
	return draft, nil
}
