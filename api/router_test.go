package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beka-birhanu/quill-api/api"
	"github.com/beka-birhanu/quill-api/api/drafts"
	"github.com/beka-birhanu/quill-api/api/i"
	"github.com/beka-birhanu/quill-api/api/identity"
	"github.com/beka-birhanu/quill-api/api/posts"
	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/infrastruture/token"
	"github.com/beka-birhanu/quill-api/metrics"
	"github.com/beka-birhanu/quill-api/workerpool"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &dmn.User{ID: uuid.New(), Username: "alice"}
	admin = &dmn.User{ID: uuid.New(), Username: "admin", IsAdmin: true}
)

type fakeAuth struct{}

func (fakeAuth) Authenticate(_ context.Context, tok string) (uuid.UUID, error) {
	switch tok {
	case "alice-token":
		return alice.ID, nil
	case "admin-token":
		return admin.ID, nil
	case "expired-token":
		return uuid.Nil, token.ErrTokenExpired
	}
	return uuid.Nil, token.ErrTokenMalformed
}

func (fakeAuth) Register(_ context.Context, username, password string) (*dmn.User, error) {
	if username == alice.Username {
		return nil, dmn.ErrUsernameConflict
	}
	if password == "weak" {
		return nil, dmn.ErrWeakPassword
	}
	return &dmn.User{ID: uuid.New(), Username: username}, nil
}

func (fakeAuth) SignIn(_ context.Context, username, password string) (*dmn.User, string, error) {
	if username == alice.Username && password == "right" {
		return alice, "alice-token", nil
	}
	return nil, "", dmn.ErrIncorrectPassword
}

func (fakeAuth) ChangePassword(_ context.Context, _ uuid.UUID, oldPassword, _ string) error {
	if oldPassword != "right" {
		return dmn.ErrIncorrectPassword
	}
	return nil
}

func (fakeAuth) Me(_ context.Context, id uuid.UUID) (*dmn.User, error) {
	switch id {
	case alice.ID:
		return alice, nil
	case admin.ID:
		return admin, nil
	}
	return nil, dmn.ErrUserNotFound
}

type fakePosts struct {
	post *dmn.Post
}

func (f *fakePosts) Create(_ context.Context, authorID uuid.UUID, subject, body string) (*dmn.Post, error) {
	return dmn.NewPost(dmn.PostConfig{ID: uuid.New(), AuthorID: authorID, Subject: subject, Body: body, Now: time.Now()})
}

func (f *fakePosts) Update(_ context.Context, userID, postID uuid.UUID, subject, body *string) (*dmn.Post, error) {
	if postID != f.post.ID {
		return nil, dmn.ErrPostNotFound
	}
	if !f.post.OwnedBy(userID) {
		return nil, dmn.ErrNotOwner
	}
	return f.post, f.post.Edit(subject, body, time.Now())
}

func (f *fakePosts) Delete(_ context.Context, userID, postID uuid.UUID) error {
	if !f.post.OwnedBy(userID) {
		return dmn.ErrNotOwner
	}
	return nil
}

func (f *fakePosts) RequestPublish(_ context.Context, _, _ uuid.UUID) (*dmn.Post, error) {
	return f.post, f.post.RequestPublish(time.Now())
}

func (f *fakePosts) Mine(context.Context, uuid.UUID) ([]*dmn.Post, error) {
	return []*dmn.Post{f.post}, nil
}

func (f *fakePosts) Published(context.Context) ([]*dmn.Post, error) {
	return nil, workerpool.ErrQueueFull
}

func (f *fakePosts) PublishedByID(_ context.Context, postID uuid.UUID) (*dmn.Post, error) {
	if postID != f.post.ID || f.post.Status != dmn.StatusPublished {
		return nil, dmn.ErrPostNotFound
	}
	return f.post, nil
}

func (f *fakePosts) Publish(_ context.Context, adminID, _ uuid.UUID) (*dmn.Post, error) {
	if adminID != admin.ID {
		return nil, dmn.ErrNotAdmin
	}
	return f.post, f.post.Publish(time.Now())
}

func (f *fakePosts) PublishRequests(_ context.Context, adminID uuid.UUID) ([]*dmn.Post, error) {
	if adminID != admin.ID {
		return nil, dmn.ErrNotAdmin
	}
	return []*dmn.Post{f.post}, nil
}

type fakeDrafts struct{}

func (fakeDrafts) Create(_ context.Context, authorID uuid.UUID, subject, body string, postID *uuid.UUID) (*dmn.Draft, error) {
	return dmn.NewDraft(dmn.DraftConfig{ID: uuid.New(), AuthorID: authorID, Subject: subject, Body: body, PostID: postID, Now: time.Now()})
}

func (fakeDrafts) Get(context.Context, uuid.UUID, uuid.UUID) (*dmn.Draft, error) {
	return nil, dmn.ErrDraftNotFound
}

func (fakeDrafts) List(context.Context, uuid.UUID) ([]*dmn.Draft, error) {
	return []*dmn.Draft{}, nil
}

func (fakeDrafts) Update(context.Context, uuid.UUID, uuid.UUID, *string, *string) (*dmn.Draft, error) {
	return nil, dmn.ErrNotOwner
}

func (fakeDrafts) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type testServer struct {
	handler http.Handler
	post    *dmn.Post
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	post, err := dmn.NewPost(dmn.PostConfig{ID: uuid.New(), AuthorID: alice.ID, Subject: "Hello", Body: "World", Now: time.Now()})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	router := api.NewRouter(api.Config{
		BaseURL: "/api",
		Controllers: []i.Controller{
			identity.NewIdentityServer(fakeAuth{}),
			posts.NewController(&fakePosts{post: post}),
			drafts.NewController(fakeDrafts{}),
		},
		AuthorizationMiddleware: identity.Authorize(fakeAuth{}),
		Middlewares:             []gin.HandlerFunc{m.HTTP.Middleware()},
		MetricsHandler:          metrics.Handler(reg),
		AccessLog:               io.Discard,
	})
	return &testServer{handler: router.Handler(), post: post}
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func TestIdentityRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "bob", "password": "strong"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"bob"`)

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "alice", "password": "strong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"username already taken"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "right"})
	require.Equal(t, http.StatusOK, w.Code)
	var login identity.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "alice-token", login.Token)
	assert.Equal(t, alice.ID.String(), login.ID)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", "alice-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", "expired-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/users/me/password", "alice-token", gin.H{"old_password": "right", "new_password": "next"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/users/me/password", "alice-token", gin.H{"old_password": "nope", "new_password": "next"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostRoutes(t *testing.T) {
	s := newTestServer(t)
	postPath := "/api/v1/posts/" + s.post.ID.String()

	w := s.do(t, http.MethodPost, "/api/v1/posts", "", gin.H{"subject": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/posts", "alice-token", gin.H{"subject": "New", "body": "post"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"unpublished"`)

	w = s.do(t, http.MethodPost, "/api/v1/posts", "alice-token", gin.H{"body": "no subject"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, postPath, "admin-token", gin.H{"subject": "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPatch, postPath, "alice-token", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, postPath, "alice-token", gin.H{"body": "Edited"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"body":"Edited"`)

	w = s.do(t, http.MethodPatch, "/api/v1/posts/not-a-uuid", "alice-token", gin.H{"body": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, postPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/posts/"+s.post.ID.String()+"/publish", "admin-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "publishing needs a request first")

	w = s.do(t, http.MethodPost, postPath+"/publish-request", "alice-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"request_to_admin_for_publish"`)

	w = s.do(t, http.MethodGet, "/api/v1/admin/posts/requests", "alice-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/admin/posts/requests", "admin-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/posts/"+s.post.ID.String()+"/publish", "admin-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"published"`)

	w = s.do(t, http.MethodGet, postPath, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/users/me/posts", "alice-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, postPath, "admin-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, postPath, "alice-token", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPoolFailuresAreInternalErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestDraftRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/drafts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/drafts", "alice-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	postID := s.post.ID.String()
	w = s.do(t, http.MethodPost, "/api/v1/drafts", "alice-token", gin.H{"subject": "Idea", "post_id": postID})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"post_id":"`+postID+`"`)

	w = s.do(t, http.MethodPost, "/api/v1/drafts", "alice-token", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/drafts/"+uuid.NewString(), "alice-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPatch, "/api/v1/drafts/"+uuid.NewString(), "alice-token", gin.H{"body": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/drafts/"+uuid.NewString(), "alice-token", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOperationalRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_ = s.do(t, http.MethodGet, "/api/v1/users/me", "alice-token", nil)
	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `quill_http_requests_total{method="GET",path="/api/v1/users/me",status="200"} 1`)
}

func TestServeShutsDownWithContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := api.NewRouter(api.Config{BaseURL: "/api", AccessLog: io.Discard})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- router.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
