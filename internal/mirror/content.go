package mirror

import (
	"context"
	"log/slog"
	"sync"

	postentity "github.com/nextstepz/community/internal/domain/post/entity"
	questionentity "github.com/nextstepz/community/internal/domain/question/entity"
	"github.com/nextstepz/community/internal/httpx/upstream/community"
)

// QuestionAPI is the part of the community API a question mirror calls
type QuestionAPI interface {
	LikeQuestion(ctx context.Context, id string) (community.LikeState, error)
	ViewQuestion(ctx context.Context, id string) (int, error)
}

// Question mirrors one question's counters
type Question struct {
	api    QuestionAPI
	logger *slog.Logger

	mu sync.Mutex
	q  questionentity.Question
}

// NewQuestion starts a mirror from a fetched question
func NewQuestion(api QuestionAPI, q questionentity.Question, logger *slog.Logger) *Question {
	if logger == nil {
		logger = slog.Default()
	}
	return &Question{api: api, q: q, logger: logger.With("question_id", q.ID)}
}

// Snapshot returns the current local copy
func (m *Question) Snapshot() questionentity.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q
}

// ToggleLike flips the like optimistically and reconciles with the server
func (m *Question) ToggleLike(ctx context.Context) error {
	m.mu.Lock()
	before := likeState{m.q.IsLiked, m.q.LikesCount}
	m.q.IsLiked, m.q.LikesCount = flip(m.q.IsLiked, m.q.LikesCount)
	guess := likeState{m.q.IsLiked, m.q.LikesCount}
	id := m.q.ID
	m.mu.Unlock()

	state, err := m.api.LikeQuestion(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.logger.Error("failed to toggle question like", "error", err)
		if (likeState{m.q.IsLiked, m.q.LikesCount}) == guess {
			m.q.IsLiked, m.q.LikesCount = before.liked, before.count
		}
		return err
	}
	m.q.IsLiked, m.q.LikesCount = state.IsLiked, state.LikesCount
	return nil
}

// RecordView counts a view and adopts the server's counter
func (m *Question) RecordView(ctx context.Context) error {
	n, err := m.api.ViewQuestion(ctx, m.Snapshot().ID)
	if err != nil {
		m.logger.Error("failed to record question view", "error", err)
		return err
	}

	m.mu.Lock()
	m.q.ViewCount = n
	m.mu.Unlock()
	return nil
}

// PostAPI is the part of the community API a post mirror calls
type PostAPI interface {
	LikePost(ctx context.Context, id string) (community.LikeState, error)
	SharePost(ctx context.Context, id string) (int, error)
}

// Post mirrors one feed post's counters
type Post struct {
	api    PostAPI
	logger *slog.Logger

	mu sync.Mutex
	p  postentity.Post
}

// NewPost starts a mirror from a fetched post
func NewPost(api PostAPI, p postentity.Post, logger *slog.Logger) *Post {
	if logger == nil {
		logger = slog.Default()
	}
	return &Post{api: api, p: p, logger: logger.With("post_id", p.ID)}
}

// Snapshot returns the current local copy
func (m *Post) Snapshot() postentity.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p
}

// ToggleLike flips the like optimistically and reconciles with the server
func (m *Post) ToggleLike(ctx context.Context) error {
	m.mu.Lock()
	before := likeState{m.p.IsLiked, m.p.LikesCount}
	m.p.IsLiked, m.p.LikesCount = flip(m.p.IsLiked, m.p.LikesCount)
	guess := likeState{m.p.IsLiked, m.p.LikesCount}
	id := m.p.ID
	m.mu.Unlock()

	state, err := m.api.LikePost(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.logger.Error("failed to toggle post like", "error", err)
		if (likeState{m.p.IsLiked, m.p.LikesCount}) == guess {
			m.p.IsLiked, m.p.LikesCount = before.liked, before.count
		}
		return err
	}
	m.p.IsLiked, m.p.LikesCount = state.IsLiked, state.LikesCount
	return nil
}

// Share counts a share and adopts the server's counter
func (m *Post) Share(ctx context.Context) error {
	n, err := m.api.SharePost(ctx, m.Snapshot().ID)
	if err != nil {
		m.logger.Error("failed to share post", "error", err)
		return err
	}

	m.mu.Lock()
	m.p.ShareCount = n
	m.mu.Unlock()
	return nil
}

// likeState is a like flag with its counter, compared to detect a newer copy
type likeState struct {
	liked bool
	count int
}

// flip is the local like toggle: the flag inverts and the count moves by one, unclamped
func flip(liked bool, count int) (bool, int) {
	if liked {
		return false, count - 1
	}
	return true, count + 1
}
