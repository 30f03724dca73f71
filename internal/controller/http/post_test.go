package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstepz/community/internal/domain/post/entity"
	"github.com/nextstepz/community/internal/domain/post/service"
	"github.com/nextstepz/community/internal/httpx/middleware"
	"github.com/nextstepz/community/internal/validate"
)

type fakePosts struct {
	list     service.ListInput
	viewer   string
	form     validate.PostForm
	deleted  string
	likes    int
	createFn func(form validate.PostForm) (*entity.Post, error)
}

func (f *fakePosts) Create(_ context.Context, authorID string, form validate.PostForm) (*entity.Post, error) {
	f.viewer = authorID
	if f.createFn != nil {
		return f.createFn(form)
	}
	return &entity.Post{ID: "p1", Author: entity.Author{ID: authorID}, Content: form.Content}, nil
}

func (f *fakePosts) Update(_ context.Context, id, viewerID string, form validate.PostForm) (*entity.Post, error) {
	if viewerID != "owner" {
		return nil, entity.ErrNotOwner
	}
	f.form = form
	return &entity.Post{ID: id, Content: form.Content}, nil
}

func (f *fakePosts) Delete(_ context.Context, id, viewerID string) error {
	if id != "p1" {
		return entity.ErrPostNotFound
	}
	f.deleted = id
	return nil
}

func (f *fakePosts) Get(_ context.Context, id, viewerID string) (*entity.Post, error) {
	if id != "p1" {
		return nil, entity.ErrPostNotFound
	}
	f.viewer = viewerID
	return &entity.Post{ID: id}, nil
}

func (f *fakePosts) List(_ context.Context, in service.ListInput) (*entity.Page, error) {
	f.list = in
	return &entity.Page{Posts: []entity.Post{}, Pagination: entity.NewPagination(in.Page, 10, 0)}, nil
}

func (f *fakePosts) ToggleLike(_ context.Context, id, viewerID string) (*entity.LikeResult, error) {
	f.likes++
	return &entity.LikeResult{IsLiked: f.likes%2 == 1, LikesCount: f.likes % 2}, nil
}

func (f *fakePosts) Share(_ context.Context, id string) (*entity.ShareResult, error) {
	return &entity.ShareResult{ShareCount: 3}, nil
}

func TestPostListParsesFilters(t *testing.T) {
	posts := &fakePosts{}
	r := newRouter(NewPostHandler(posts), "viewer")

	rec := do(t, r, http.MethodGet, "/posts?page=2&limit=5&category=offer&hashtag=golang,Remote&hashtag=hcm&topic=IT&q=intern", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, posts.list.Page)
	assert.Equal(t, 5, posts.list.Limit)
	assert.Equal(t, "viewer", posts.list.ViewerID)
	assert.Equal(t, entity.FeedFilter{
		Category: entity.CategoryOffer,
		Hashtags: []string{"golang", "Remote", "hcm"},
		Topics:   []string{"IT"},
		Search:   "intern",
	}, posts.list.Filter)
}

func TestPostListIsPublic(t *testing.T) {
	posts := &fakePosts{}
	r := newRouter(NewPostHandler(posts), "")

	rec := do(t, r, http.MethodGet, "/posts?page=abc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, posts.list.Page)
	assert.Equal(t, "", posts.list.ViewerID)
}

func TestPostWritesRequireLogin(t *testing.T) {
	r := newRouter(NewPostHandler(&fakePosts{}), "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/posts"},
		{http.MethodPatch, "/posts/p1"},
		{http.MethodDelete, "/posts/p1"},
		{http.MethodPost, "/posts/p1/like"},
	} {
		rec := do(t, r, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.Equal(t, middleware.MsgLoginRequired, decode[errorBody](t, rec).Error)
	}

	// sharing and share links stay public
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/posts/p1/share", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/shared/p1", nil).Code)
}

func TestPostCreate(t *testing.T) {
	posts := &fakePosts{}
	r := newRouter(NewPostHandler(posts), "author")

	rec := do(t, r, http.MethodPost, "/posts", map[string]any{"content": "Hello community"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "author", posts.viewer)
	assert.Equal(t, "Hello community", decode[entity.Post](t, rec).Content)
}

func TestPostCreateValidationError(t *testing.T) {
	posts := &fakePosts{createFn: func(form validate.PostForm) (*entity.Post, error) {
		return nil, validate.Struct(&form)
	}}
	r := newRouter(NewPostHandler(posts), "author")

	rec := do(t, r, http.MethodPost, "/posts", map[string]any{"content": "short"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorBody](t, rec)
	assert.NotEmpty(t, body.Error)
	assert.Contains(t, body.Fields, "content")
}

func TestPostInvalidJSON(t *testing.T) {
	r := newRouter(NewPostHandler(&fakePosts{}), "author")

	rec := do(t, r, http.MethodPost, "/posts", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgInvalidJSON, decode[errorBody](t, rec).Error)
}

func TestPostOwnership(t *testing.T) {
	posts := &fakePosts{}

	rec := do(t, newRouter(NewPostHandler(posts), "intruder"), http.MethodPatch, "/posts/p1", map[string]any{"content": "edited content"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, newRouter(NewPostHandler(posts), "owner"), http.MethodPatch, "/posts/p1", map[string]any{"content": "edited content"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited content", posts.form.Content)
}

func TestPostDelete(t *testing.T) {
	posts := &fakePosts{}
	r := newRouter(NewPostHandler(posts), "owner")

	rec := do(t, r, http.MethodDelete, "/posts/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", posts.deleted)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["message"])

	rec = do(t, r, http.MethodDelete, "/posts/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostLikeRecordsMetric(t *testing.T) {
	counter := &likeCounter{}
	r := newRouter(NewPostHandler(&fakePosts{}).WithRecorder(counter), "viewer")

	rec := do(t, r, http.MethodPost, "/posts/p1/like", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.LikeResult{IsLiked: true, LikesCount: 1}, decode[entity.LikeResult](t, rec))

	do(t, r, http.MethodPost, "/posts/p1/like", nil)
	assert.Equal(t, []bool{true, false}, counter.calls["post"])
}

func TestPostGetPassesViewer(t *testing.T) {
	posts := &fakePosts{}
	r := newRouter(NewPostHandler(posts), "viewer")

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/posts/p1", nil).Code)
	assert.Equal(t, "viewer", posts.viewer)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/posts/nope", nil).Code)
}
