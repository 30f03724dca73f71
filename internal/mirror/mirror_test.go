package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commententity "github.com/nextstepz/community/internal/domain/comment/entity"
	postentity "github.com/nextstepz/community/internal/domain/post/entity"
	questionentity "github.com/nextstepz/community/internal/domain/question/entity"
	"github.com/nextstepz/community/internal/httpx/middleware"
	"github.com/nextstepz/community/internal/httpx/upstream/community"
	"github.com/nextstepz/community/internal/thread"
	"github.com/nextstepz/community/internal/validate"
)

var (
	errNetwork = errors.New("connection refused")
	target     = commententity.Target{Type: commententity.TargetPost, ID: "p1"}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI serves a thread held in memory, the way the server would
type fakeAPI struct {
	mu       sync.Mutex
	nested   []thread.Nested
	likeResp *community.LikeState
	likeErr  error
	addErr   error
	added    []string
	gate     chan struct{} // when set, AddComment blocks until it is closed

	likeStarted chan struct{} // when set, closed once LikeComment is called
	likeGate    chan struct{} // when set, LikeComment blocks until it is closed
}

func (f *fakeAPI) Comments(context.Context, commententity.Target) ([]thread.Nested, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nested, nil
}

func (f *fakeAPI) AddComment(_ context.Context, _ commententity.Target, content, parentID string) (*thread.Comment, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, content)

	c := thread.Comment{ID: "srv-" + content, ParentID: parentID, Content: content}
	tree := thread.FromNested(f.nested)
	if parentID == "" {
		f.nested = append([]thread.Nested{{Comment: c}}, f.nested...)
		return &c, nil
	}
	tree, reply, err := tree.AddReply(parentID, content, thread.Author{}, time.Time{})
	if err != nil {
		return nil, err
	}
	f.nested = tree.Nested()
	return &reply, nil
}

func (f *fakeAPI) LikeComment(context.Context, string) (community.LikeState, error) {
	if f.likeStarted != nil {
		close(f.likeStarted)
	}
	if f.likeGate != nil {
		<-f.likeGate
	}
	if f.likeErr != nil {
		return community.LikeState{}, f.likeErr
	}
	return *f.likeResp, nil
}

func sampleNested() []thread.Nested {
	return []thread.Nested{
		{Comment: thread.Comment{ID: "a", Likes: 5, Replies: 1}, ReplyList: []thread.Nested{
			{Comment: thread.Comment{ID: "b", Likes: 0}},
		}},
		{Comment: thread.Comment{ID: "c", Likes: 2}},
	}
}

func loaded(t *testing.T, api *fakeAPI) *Thread {
	t.Helper()
	m := NewThread(api, target, quietLogger())
	require.NoError(t, m.Load(context.Background()))
	return m
}

func TestLoadKeepsExpansion(t *testing.T) {
	api := &fakeAPI{nested: sampleNested()}
	m := loaded(t, api)
	assert.Equal(t, 3, m.TotalComments())

	assert.True(t, m.ToggleExpand("a"))
	require.NoError(t, m.Load(context.Background()))
	assert.True(t, m.Expanded().Has("a"))

	assert.False(t, m.ToggleExpand("a"))
	assert.Zero(t, m.Expanded().Len())
}

func TestReplyReloadsAndExpandsParent(t *testing.T) {
	api := &fakeAPI{nested: sampleNested()}
	m := loaded(t, api)
	before := m.Tree()

	require.NoError(t, m.Reply(context.Background(), "b", "  hello  "))

	assert.Equal(t, []string{"hello"}, api.added)
	kids := m.Tree().Children("b")
	require.Len(t, kids, 1)
	assert.Equal(t, "hello", kids[0].Content)
	assert.True(t, m.Expanded().Has("b"))
	assert.Equal(t, 4, m.TotalComments())

	// the old snapshot is untouched
	assert.Equal(t, 3, before.Len())
}

func TestReplyRootDoesNotExpand(t *testing.T) {
	api := &fakeAPI{nested: sampleNested()}
	m := loaded(t, api)

	require.NoError(t, m.Reply(context.Background(), "", "new root"))
	assert.Equal(t, "srv-new root", m.Tree().Roots()[0].ID)
	assert.Zero(t, m.Expanded().Len())
}

func TestReplyFailureLeavesTree(t *testing.T) {
	api := &fakeAPI{nested: sampleNested(), addErr: errNetwork}
	m := loaded(t, api)
	before := m.Tree()

	err := m.Reply(context.Background(), "a", "hello")
	assert.ErrorIs(t, err, errNetwork)
	assert.Same(t, before, m.Tree())
	assert.False(t, m.Expanded().Has("a"))

	assert.ErrorIs(t, m.Reply(context.Background(), "a", "   "), ErrEmptyContent)
}

func TestReplyRejectsDoubleSubmit(t *testing.T) {
	api := &fakeAPI{nested: sampleNested(), gate: make(chan struct{})}
	m := loaded(t, api)

	done := make(chan error, 1)
	go func() { done <- m.Reply(context.Background(), "a", "first") }()

	// wait until the first submit holds the flag
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.submitting
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, m.Reply(context.Background(), "a", "second"), ErrSubmitInProgress)

	close(api.gate)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"first"}, api.added)

	// the flag is released afterwards
	require.NoError(t, m.Reply(context.Background(), "a", "third"))
}

func TestReplyLocal(t *testing.T) {
	m := loaded(t, &fakeAPI{nested: sampleNested()})

	reply, err := m.ReplyLocal("c", "local", thread.Author{ID: "me"})
	require.NoError(t, err)
	assert.Equal(t, "c", reply.ParentID)
	assert.True(t, m.Expanded().Has("c"))
	c, _ := m.Tree().Get("c")
	assert.Equal(t, 1, c.Replies)

	_, err = m.ReplyLocal("zzz", "local", thread.Author{})
	assert.ErrorIs(t, err, thread.ErrCommentNotFound)
	assert.False(t, m.Expanded().Has("zzz"))
}

func TestToggleLikeAgreesWithServer(t *testing.T) {
	api := &fakeAPI{nested: sampleNested(), likeResp: &community.LikeState{IsLiked: true, LikesCount: 6}}
	m := loaded(t, api)

	require.NoError(t, m.ToggleLike(context.Background(), "a"))
	a, _ := m.Tree().Get("a")
	assert.True(t, a.IsLiked)
	assert.Equal(t, 6, a.Likes)
}

func TestToggleLikeServerOverrides(t *testing.T) {
	// another viewer liked in the meantime
	api := &fakeAPI{nested: sampleNested(), likeResp: &community.LikeState{IsLiked: true, LikesCount: 9}}
	m := loaded(t, api)

	require.NoError(t, m.ToggleLike(context.Background(), "b"))
	b, _ := m.Tree().Get("b")
	assert.True(t, b.IsLiked)
	assert.Equal(t, 9, b.Likes)
}

func TestToggleLikeRollsBack(t *testing.T) {
	api := &fakeAPI{nested: sampleNested(), likeErr: errNetwork}
	m := loaded(t, api)

	err := m.ToggleLike(context.Background(), "a")
	assert.ErrorIs(t, err, errNetwork)
	a, _ := m.Tree().Get("a")
	assert.False(t, a.IsLiked)
	assert.Equal(t, 5, a.Likes)

	assert.ErrorIs(t, m.ToggleLike(context.Background(), "missing"), thread.ErrCommentNotFound)
}

func TestFailedLikeKeepsReloadedState(t *testing.T) {
	api := &fakeAPI{
		nested:      sampleNested(),
		likeErr:     errNetwork,
		likeStarted: make(chan struct{}),
		likeGate:    make(chan struct{}),
	}
	m := loaded(t, api)

	done := make(chan error, 1)
	go func() { done <- m.ToggleLike(context.Background(), "a") }()

	<-api.likeStarted
	a, _ := m.Tree().Get("a")
	assert.True(t, a.IsLiked)
	assert.Equal(t, 6, a.Likes)

	// a reload lands while the like is in flight
	api.mu.Lock()
	api.nested[0].Likes = 7
	api.mu.Unlock()
	require.NoError(t, m.Load(context.Background()))

	close(api.likeGate)
	assert.ErrorIs(t, <-done, errNetwork)

	a, _ = m.Tree().Get("a")
	assert.False(t, a.IsLiked)
	assert.Equal(t, 7, a.Likes)
}

func TestFailedLikeRestoresPreviousState(t *testing.T) {
	api := &fakeAPI{nested: sampleNested(), likeResp: &community.LikeState{IsLiked: true, LikesCount: 8}}
	m := loaded(t, api)
	require.NoError(t, m.ToggleLike(context.Background(), "c"))

	api.likeErr = errNetwork
	assert.ErrorIs(t, m.ToggleLike(context.Background(), "c"), errNetwork)
	c, _ := m.Tree().Get("c")
	assert.True(t, c.IsLiked)
	assert.Equal(t, 8, c.Likes)
}

func TestContentLikeFailureSkipsNewerState(t *testing.T) {
	api := &blockingContentAPI{started: make(chan struct{}), gate: make(chan struct{})}
	m := NewPost(api, postentity.Post{ID: "p1", LikesCount: 3}, quietLogger())

	done := make(chan error, 1)
	go func() { done <- m.ToggleLike(context.Background()) }()
	<-api.started

	// a second toggle lands while the first is in flight
	m.mu.Lock()
	m.p.IsLiked, m.p.LikesCount = flip(m.p.IsLiked, m.p.LikesCount)
	m.mu.Unlock()

	close(api.gate)
	assert.ErrorIs(t, <-done, errNetwork)
	p := m.Snapshot()
	assert.False(t, p.IsLiked)
	assert.Equal(t, 3, p.LikesCount)
}

// blockingContentAPI fails every like, after the test releases it
type blockingContentAPI struct {
	started chan struct{}
	gate    chan struct{}
}

func (b *blockingContentAPI) LikePost(context.Context, string) (community.LikeState, error) {
	close(b.started)
	<-b.gate
	return community.LikeState{}, errNetwork
}

func (b *blockingContentAPI) SharePost(context.Context, string) (int, error) {
	return 0, errNetwork
}

type fakeContentAPI struct {
	like    community.LikeState
	err     error
	counter int
}

func (f *fakeContentAPI) LikeQuestion(context.Context, string) (community.LikeState, error) {
	return f.like, f.err
}

func (f *fakeContentAPI) ViewQuestion(context.Context, string) (int, error) {
	return f.counter, f.err
}

func (f *fakeContentAPI) LikePost(context.Context, string) (community.LikeState, error) {
	return f.like, f.err
}

func (f *fakeContentAPI) SharePost(context.Context, string) (int, error) {
	return f.counter, f.err
}

func TestQuestionMirror(t *testing.T) {
	api := &fakeContentAPI{like: community.LikeState{IsLiked: true, LikesCount: 11}, counter: 42}
	m := NewQuestion(api, questionentity.Question{ID: "q1", LikesCount: 10, ViewCount: 3}, quietLogger())

	require.NoError(t, m.ToggleLike(context.Background()))
	require.NoError(t, m.RecordView(context.Background()))
	q := m.Snapshot()
	assert.True(t, q.IsLiked)
	assert.Equal(t, 11, q.LikesCount)
	assert.Equal(t, 42, q.ViewCount)

	api.err = errNetwork
	assert.ErrorIs(t, m.ToggleLike(context.Background()), errNetwork)
	assert.ErrorIs(t, m.RecordView(context.Background()), errNetwork)
	q = m.Snapshot()
	assert.True(t, q.IsLiked)
	assert.Equal(t, 11, q.LikesCount)
	assert.Equal(t, 42, q.ViewCount)
}

func TestPostMirror(t *testing.T) {
	api := &fakeContentAPI{err: errNetwork}
	m := NewPost(api, postentity.Post{ID: "p1", IsLiked: true, LikesCount: 0, ShareCount: 1}, quietLogger())

	assert.ErrorIs(t, m.ToggleLike(context.Background()), errNetwork)
	p := m.Snapshot()
	assert.True(t, p.IsLiked)
	assert.Zero(t, p.LikesCount)

	api.err = nil
	api.counter = 2
	api.like = community.LikeState{IsLiked: false, LikesCount: 0}
	require.NoError(t, m.Share(context.Background()))
	require.NoError(t, m.ToggleLike(context.Background()))
	p = m.Snapshot()
	assert.Equal(t, 2, p.ShareCount)
	assert.False(t, p.IsLiked)
}

func TestFlipIsNotClamped(t *testing.T) {
	liked, n := flip(true, 0)
	assert.False(t, liked)
	assert.Equal(t, -1, n)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "local validation", err: validate.Errors{"content": "content không được để trống"}, want: "content không được để trống"},
		{name: "empty content", err: ErrEmptyContent, want: MsgEmptyContent},
		{name: "double submit", err: ErrSubmitInProgress, want: MsgSubmitInProgress},
		{name: "unauthorized", err: &community.APIError{Status: http.StatusUnauthorized, Message: "missing token"}, want: middleware.MsgLoginRequired},
		{name: "server validation", err: &community.APIError{Status: http.StatusBadRequest, Fields: map[string]string{"title": "b", "content": "a"}}, want: "a"},
		{name: "server bad request", err: &community.APIError{Status: http.StatusBadRequest, Message: "Bài viết không tồn tại"}, want: "Bài viết không tồn tại"},
		{name: "server error", err: &community.APIError{Status: http.StatusInternalServerError, Message: "boom"}, want: MsgGeneric},
		{name: "network", err: errNetwork, want: MsgGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
