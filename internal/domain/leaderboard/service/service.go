package service

import (
	"context"
	"time"

	"github.com/nextstepz/community/internal/cache"
	"github.com/nextstepz/community/internal/domain/leaderboard/entity"
)

const (
	cacheKey     = "leaderboard"
	defaultLimit = 30
	maxLimit     = 100

	// activity older than this cannot extend a streak shown on the board
	streakWindow = 366 * 24 * time.Hour
)

// Repository provides the per-user activity aggregates
type Repository interface {
	Activity(ctx context.Context, since time.Time) ([]entity.Activity, error)
}

// Service builds and serves the leaderboard
type Service struct {
	repo  Repository
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// New creates a leaderboard service. A nil or disabled cache recomputes on every read.
func New(repo Repository, c *cache.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{repo: repo, cache: c, ttl: ttl, now: time.Now}
}

// Query selects what part of the board a caller wants
type Query struct {
	Limit  int
	Sort   entity.SortField
	Search string
}

// Top returns the board ordered by q.Sort. Ranks follow that order; search
// keeps the ranks of the rows it lets through.
func (s *Service) Top(ctx context.Context, q Query) ([]entity.Entry, error) {
	board, err := cache.Load(ctx, s.cache, cacheKey, s.ttl, s.compute)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	entries := make([]entity.Entry, len(board))
	copy(entries, board)
	if q.Sort != "" && q.Sort != entity.SortScore {
		entity.SortBy(entries, q.Sort)
		entity.Rerank(entries)
	}

	entries = entity.Search(entries, q.Search)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Refresh recomputes the board and stores it in the cache
func (s *Service) Refresh(ctx context.Context) (int, error) {
	board, err := s.compute(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, cacheKey, board, s.ttl); err != nil {
		return 0, err
	}
	return len(board), nil
}

func (s *Service) compute(ctx context.Context) ([]entity.Entry, error) {
	now := s.now()
	activity, err := s.repo.Activity(ctx, now.Add(-streakWindow))
	if err != nil {
		return nil, err
	}
	return entity.Build(activity, now), nil
}
