package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstepz/community/internal/domain/comment/entity"
	"github.com/nextstepz/community/internal/domain/comment/policy"
	"github.com/nextstepz/community/internal/thread"
)

type fakeCommentPolicy struct {
	thread policy.GetThreadInput
	added  policy.AddCommentInput
	stats  entity.TargetType
	top    int
	err    error
}

func (f *fakeCommentPolicy) GetThread(_ context.Context, in policy.GetThreadInput) ([]thread.Nested, error) {
	f.thread = in
	if f.err != nil {
		return nil, f.err
	}
	return []thread.Nested{{
		Comment:   thread.Comment{ID: "c1", Content: "root", Replies: 1},
		ReplyList: []thread.Nested{{Comment: thread.Comment{ID: "c2", ParentID: "c1", Content: "reply"}, ReplyList: []thread.Nested{}}},
	}}, nil
}

func (f *fakeCommentPolicy) AddComment(_ context.Context, in policy.AddCommentInput) (*thread.Comment, error) {
	f.added = in
	if f.err != nil {
		return nil, f.err
	}
	return &thread.Comment{ID: "c3", ParentID: in.ParentID, Content: in.Content, Timestamp: time.Now()}, nil
}

func (f *fakeCommentPolicy) ToggleLike(_ context.Context, commentID, viewerID string) (*entity.LikeResult, error) {
	if commentID != "c1" {
		return nil, entity.ErrCommentNotFound
	}
	return &entity.LikeResult{IsLiked: true, LikesCount: 4}, nil
}

func (f *fakeCommentPolicy) GetStatistics(_ context.Context, targetType entity.TargetType, topLimit int) (*entity.Statistics, error) {
	f.stats = targetType
	f.top = topLimit
	return &entity.Statistics{TotalComments: 2}, nil
}

func TestThreadRoutesPickTarget(t *testing.T) {
	p := &fakeCommentPolicy{}
	r := newRouter(NewCommentHandler(p), "viewer")

	rec := do(t, r, http.MethodGet, "/questions/q1/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.Target{Type: entity.TargetQuestion, ID: "q1"}, p.thread.Target)
	assert.Equal(t, "viewer", p.thread.ViewerID)

	nested := decode[[]thread.Nested](t, rec)
	require.Len(t, nested, 1)
	assert.Equal(t, 2, thread.TotalComments(nested))
	assert.Equal(t, "c2", nested[0].ReplyList[0].ID)

	do(t, r, http.MethodGet, "/posts/p1/comments", nil)
	assert.Equal(t, entity.Target{Type: entity.TargetPost, ID: "p1"}, p.thread.Target)
}

func TestAddReply(t *testing.T) {
	p := &fakeCommentPolicy{}
	r := newRouter(NewCommentHandler(p), "author")

	rec := do(t, r, http.MethodPost, "/posts/p1/comments", AddCommentRequest{Content: "Cảm ơn bạn", ParentID: "c1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, policy.AddCommentInput{
		Target:   entity.Target{Type: entity.TargetPost, ID: "p1"},
		AuthorID: "author",
		Content:  "Cảm ơn bạn",
		ParentID: "c1",
	}, p.added)
	assert.Equal(t, "c1", decode[thread.Comment](t, rec).ParentID)
}

func TestAddCommentRequiresLogin(t *testing.T) {
	r := newRouter(NewCommentHandler(&fakeCommentPolicy{}), "")

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/posts/p1/comments", AddCommentRequest{Content: "x"}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/comments/c1/like", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/posts/p1/comments", nil).Code)
}

func TestCommentErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{entity.ErrTargetNotFound, http.StatusNotFound},
		{entity.ErrParentNotFound, http.StatusNotFound},
		{entity.ErrParentMismatch, http.StatusBadRequest},
		{entity.ErrUnknownTarget, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := newRouter(NewCommentHandler(&fakeCommentPolicy{err: tc.err}), "author")
		rec := do(t, r, http.MethodPost, "/posts/p1/comments", AddCommentRequest{Content: "hello", ParentID: "x"})
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestCommentLike(t *testing.T) {
	r := newRouter(NewCommentHandler(&fakeCommentPolicy{}), "viewer")

	rec := do(t, r, http.MethodPost, "/comments/c1/like", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.LikeResult{IsLiked: true, LikesCount: 4}, decode[entity.LikeResult](t, rec))

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/comments/zz/like", nil).Code)
}

func TestCommentStatistics(t *testing.T) {
	p := &fakeCommentPolicy{}
	r := newRouter(NewCommentHandler(p), "")

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/comments/statistics", nil).Code)
	assert.Equal(t, entity.TargetPost, p.stats)
	assert.Equal(t, 5, p.top)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/comments/statistics?target=question&top=99", nil).Code)
	assert.Equal(t, entity.TargetQuestion, p.stats)
	assert.Equal(t, 20, p.top)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/comments/statistics?target=video", nil).Code)
}
