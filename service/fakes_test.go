package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/infrastruture/token"
	"github.com/beka-birhanu/quill-api/service/authmgr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]dmn.User
}

func (r *memUsers) Save(_ context.Context, user *dmn.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if id != user.ID && u.Username == user.Username {
			return dmn.ErrUsernameConflict
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUsers) ByID(_ context.Context, id uuid.UUID) (*dmn.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, dmn.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUsers) ByUsername(_ context.Context, username string) (*dmn.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, dmn.ErrUserNotFound
}

type memPosts struct {
	mu    sync.Mutex
	posts map[uuid.UUID]dmn.Post
}

func (r *memPosts) Save(_ context.Context, post *dmn.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = *post
	return nil
}

func (r *memPosts) ByID(_ context.Context, id uuid.UUID) (*dmn.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, dmn.ErrPostNotFound
	}
	return &p, nil
}

func (r *memPosts) filter(keep func(dmn.Post) bool) []*dmn.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*dmn.Post{}
	for _, p := range r.posts {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}

func (r *memPosts) ByStatus(_ context.Context, status dmn.PublishStatus) ([]*dmn.Post, error) {
	return r.filter(func(p dmn.Post) bool { return p.Status == status }), nil
}

func (r *memPosts) ByAuthor(_ context.Context, authorID uuid.UUID) ([]*dmn.Post, error) {
	return r.filter(func(p dmn.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *memPosts) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return dmn.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

type memDrafts struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]dmn.Draft
}

func (r *memDrafts) Save(_ context.Context, draft *dmn.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[draft.ID] = *draft
	return nil
}

func (r *memDrafts) ByID(_ context.Context, id uuid.UUID) (*dmn.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return nil, dmn.ErrDraftNotFound
	}
	return &d, nil
}

func (r *memDrafts) ByAuthor(_ context.Context, authorID uuid.UUID) ([]*dmn.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*dmn.Draft{}
	for _, d := range r.drafts {
		if d.AuthorID == authorID {
			d := d
			out = append(out, &d)
		}
	}
	return out, nil
}

func (r *memDrafts) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[id]; !ok {
		return dmn.ErrDraftNotFound
	}
	delete(r.drafts, id)
	return nil
}

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(password []byte) (string, error) {
	return "plain$" + string(password), nil
}

func (plainHasher) Verify(password []byte, digest string) bool {
	return digest == "plain$"+string(password)
}

type fixture struct {
	users  *memUsers
	posts  *memPosts
	drafts *memDrafts
	db     *DBPool
	authP  *AuthPool
	auth   *Auth
	post   *Posts
	draft  *Drafts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:  &memUsers{users: map[uuid.UUID]dmn.User{}},
		posts:  &memPosts{posts: map[uuid.UUID]dmn.Post{}},
		drafts: &memDrafts{drafts: map[uuid.UUID]dmn.Draft{}},
	}

	var tick sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick.Lock()
		defer tick.Unlock()
		now = now.Add(time.Second)
		return now
	}

	var err error
	f.db, err = NewDBPool(&DB{
		Users:  f.users,
		Posts:  f.posts,
		Drafts: f.drafts,
		Hasher: plainHasher{},
		Clock:  clock,
	}, 2)
	require.NoError(t, err)
	t.Cleanup(f.db.Close)

	codec, err := token.NewJwtService[uuid.UUID]("service-test-secret-service-test", "HS256")
	require.NoError(t, err)
	mgr, err := authmgr.NewDirect(authmgr.Config[uuid.UUID]{Tokenizer: codec, Expiration: time.Hour})
	require.NoError(t, err)
	f.authP, err = authmgr.NewPool(mgr, 1)
	require.NoError(t, err)
	t.Cleanup(f.authP.Close)

	f.auth, err = NewAuth(f.db, f.authP)
	require.NoError(t, err)
	f.post, err = NewPosts(f.db)
	require.NoError(t, err)
	f.draft, err = NewDrafts(f.db)
	require.NoError(t, err)
	return f
}

const strongPassword = "violet-Harbor-lantern-93"

func (f *fixture) register(t *testing.T, username string) *dmn.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), username, strongPassword)
	require.NoError(t, err)
	return u
}

func (f *fixture) makeAdmin(t *testing.T, id uuid.UUID) {
	t.Helper()
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	u := f.users.users[id]
	u.IsAdmin = true
	f.users.users[id] = u
}
