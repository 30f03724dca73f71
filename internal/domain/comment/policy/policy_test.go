package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstepz/community/internal/domain/comment/entity"
	"github.com/nextstepz/community/internal/domain/comment/service"
	"github.com/nextstepz/community/internal/thread"
)

type existsSet map[string]bool

func (s existsSet) Exists(_ context.Context, id string) (bool, error) {
	if id == "boom" {
		return false, errors.New("db down")
	}
	return s[id], nil
}

type fakeService struct {
	added []service.AddInput
}

func (f *fakeService) Thread(_ context.Context, target entity.Target, _ string) ([]thread.Nested, error) {
	return []thread.Nested{{Comment: thread.Comment{ID: target.ID + "-c1"}}}, nil
}

func (f *fakeService) Add(_ context.Context, in service.AddInput) (*thread.Comment, error) {
	f.added = append(f.added, in)
	return &thread.Comment{ID: "new", ParentID: in.ParentID, Content: in.Content}, nil
}

func (f *fakeService) ToggleLike(_ context.Context, _, _ string) (*entity.LikeResult, error) {
	return &entity.LikeResult{IsLiked: true, LikesCount: 3}, nil
}

func (f *fakeService) GetStatistics(_ context.Context, _ entity.TargetType, _ int) (*entity.Statistics, error) {
	return &entity.Statistics{}, nil
}

type recorder struct {
	comments []string
	likes    int
}

func (r *recorder) CommentCreated(target string, reply bool) {
	kind := "root"
	if reply {
		kind = "reply"
	}
	r.comments = append(r.comments, target+"/"+kind)
}

func (r *recorder) LikeToggled(string, bool) { r.likes++ }

func newPolicy() (*Policy, *fakeService, *recorder) {
	svc := &fakeService{}
	rec := &recorder{}
	p := New(svc, existsSet{"p1": true}, existsSet{"q1": true}).WithRecorder(rec)
	return p, svc, rec
}

func TestGetThreadChecksTarget(t *testing.T) {
	p, _, _ := newPolicy()
	ctx := context.Background()

	got, err := p.GetThread(ctx, GetThreadInput{Target: entity.Target{Type: entity.TargetQuestion, ID: "q1"}})
	require.NoError(t, err)
	assert.Equal(t, "q1-c1", got[0].ID)

	_, err = p.GetThread(ctx, GetThreadInput{Target: entity.Target{Type: entity.TargetPost, ID: "q1"}})
	assert.ErrorIs(t, err, entity.ErrTargetNotFound)

	_, err = p.GetThread(ctx, GetThreadInput{Target: entity.Target{Type: "video", ID: "p1"}})
	assert.ErrorIs(t, err, entity.ErrUnknownTarget)

	_, err = p.GetThread(ctx, GetThreadInput{Target: entity.Target{Type: entity.TargetPost, ID: "boom"}})
	assert.EqualError(t, err, "db down")
}

func TestAddCommentRecords(t *testing.T) {
	p, svc, rec := newPolicy()
	ctx := context.Background()

	_, err := p.AddComment(ctx, AddCommentInput{Target: entity.Target{Type: entity.TargetPost, ID: "p1"}, AuthorID: "u1", Content: "hi"})
	require.NoError(t, err)
	_, err = p.AddComment(ctx, AddCommentInput{Target: entity.Target{Type: entity.TargetQuestion, ID: "q1"}, AuthorID: "u1", Content: "hi", ParentID: "c9"})
	require.NoError(t, err)

	_, err = p.AddComment(ctx, AddCommentInput{Target: entity.Target{Type: entity.TargetPost, ID: "nope"}, AuthorID: "u1", Content: "hi"})
	assert.ErrorIs(t, err, entity.ErrTargetNotFound)

	assert.Len(t, svc.added, 2)
	assert.Equal(t, []string{"post/root", "question/reply"}, rec.comments)
}

func TestToggleLikeRecords(t *testing.T) {
	p, _, rec := newPolicy()
	res, err := p.ToggleLike(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.True(t, res.IsLiked)
	assert.Equal(t, 1, rec.likes)
}
