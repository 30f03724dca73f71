package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstepz/community/internal/domain/post/dao"
	"github.com/nextstepz/community/internal/domain/post/entity"
	"github.com/nextstepz/community/internal/validate"
)

type memRepo struct {
	posts map[string]*entity.Post
	likes map[[2]string]bool
	list  dao.ListOptions
}

func newMemRepo() *memRepo {
	return &memRepo{posts: map[string]*entity.Post{}, likes: map[[2]string]bool{}}
}

func (m *memRepo) Create(_ context.Context, p *entity.Post) error {
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, p *entity.Post) error {
	if _, ok := m.posts[p.ID]; !ok {
		return entity.ErrPostNotFound
	}
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	delete(m.posts, id)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id, _ string) (*entity.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, entity.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.posts[id]
	return ok, nil
}

func (m *memRepo) List(_ context.Context, opts dao.ListOptions) ([]entity.Post, int, error) {
	m.list = opts
	return []entity.Post{}, 23, nil
}

func (m *memRepo) ToggleLike(_ context.Context, postID, userID string) (*entity.LikeResult, error) {
	k := [2]string{postID, userID}
	m.likes[k] = !m.likes[k]
	n := 0
	for key, v := range m.likes {
		if v && key[0] == postID {
			n++
		}
	}
	return &entity.LikeResult{IsLiked: m.likes[k], LikesCount: n}, nil
}

func (m *memRepo) IncrementShare(_ context.Context, postID string) (int, error) {
	p, ok := m.posts[postID]
	if !ok {
		return 0, entity.ErrPostNotFound
	}
	p.ShareCount++
	return p.ShareCount, nil
}

func TestCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := New(repo)
	svc.now = func() time.Time { return time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC) }

	p, err := svc.Create(ctx, "author", validate.PostForm{
		Content:  "  Mình vừa nhận offer đầu tiên!  ",
		Hashtags: []string{"#Offer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mình vừa nhận offer đầu tiên!", p.Content)
	assert.Equal(t, entity.CategoryDiscussion, p.Category)
	assert.Equal(t, []string{"offer"}, p.Hashtags)

	_, err = svc.Update(ctx, p.ID, "intruder", validate.PostForm{Content: strings.Repeat("x", 20)})
	assert.ErrorIs(t, err, entity.ErrNotOwner)

	updated, err := svc.Update(ctx, p.ID, "author", validate.PostForm{Content: strings.Repeat("x", 20), Category: "offer"})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryOffer, updated.Category)

	_, err = svc.Update(ctx, p.ID, "author", validate.PostForm{Content: "short"})
	_, isValidation := validate.AsErrors(err)
	assert.True(t, isValidation)

	assert.ErrorIs(t, svc.Delete(ctx, p.ID, "intruder"), entity.ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, p.ID, "author"))
	_, err = svc.Get(ctx, p.ID, "author")
	assert.ErrorIs(t, err, entity.ErrPostNotFound)
}

func TestListPagination(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo)

	page, err := svc.List(context.Background(), ListInput{Page: 3, Limit: 500, ViewerID: "v"})
	require.NoError(t, err)
	assert.Equal(t, maxLimit, repo.list.Limit)
	assert.Equal(t, 2*maxLimit, repo.list.Offset)
	assert.Equal(t, "v", repo.list.ViewerID)
	assert.Equal(t, entity.Pagination{Page: 3, Limit: maxLimit, Total: 23, TotalPages: 1}, page.Pagination)

	_, err = svc.List(context.Background(), ListInput{})
	require.NoError(t, err)
	assert.Equal(t, defaultLimit, repo.list.Limit)
	assert.Equal(t, 0, repo.list.Offset)
}

func TestLikeAndShare(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	repo.posts["p"] = &entity.Post{ID: "p", ShareCount: 4}
	svc := New(repo)

	res, err := svc.ToggleLike(ctx, "p", "u")
	require.NoError(t, err)
	assert.Equal(t, &entity.LikeResult{IsLiked: true, LikesCount: 1}, res)

	res, err = svc.ToggleLike(ctx, "p", "u")
	require.NoError(t, err)
	assert.Equal(t, &entity.LikeResult{IsLiked: false, LikesCount: 0}, res)

	share, err := svc.Share(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 5, share.ShareCount)

	_, err = svc.Share(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrPostNotFound)
}

type fakeImages struct {
	deleted []string
	fail    string
}

func (f *fakeImages) DeleteURL(_ context.Context, url string) error {
	if url == f.fail {
		return errors.New("foreign url")
	}
	f.deleted = append(f.deleted, url)
	return nil
}

func TestDeleteRemovesImages(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	repo.posts["p"] = &entity.Post{
		ID:     "p",
		Author: entity.Author{ID: "author"},
		Images: []string{"https://cdn/a.png", "https://elsewhere/b.png", "https://cdn/c.png"},
	}
	images := &fakeImages{fail: "https://elsewhere/b.png"}
	svc := New(repo).WithImageStore(images, nil)

	require.NoError(t, svc.Delete(ctx, "p", "author"))
	assert.Equal(t, []string{"https://cdn/a.png", "https://cdn/c.png"}, images.deleted)
}
