package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextstepz/community/internal/domain/question/entity"
	"github.com/nextstepz/community/internal/validate"
)

const (
	defaultLimit    = 20
	maxLimit        = 50
	defaultTopLimit = 3
)

// Repository defines the question storage the service needs
type Repository interface {
	Create(ctx context.Context, q *entity.Question) error
	GetByID(ctx context.Context, id, viewerID string) (*entity.Question, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, viewerID string, limit, offset int) ([]entity.Question, error)
	Featured(ctx context.Context, limit int) ([]entity.Question, error)
	TopExperts(ctx context.Context, limit int) ([]entity.TopExpert, error)
	Counts(ctx context.Context, since time.Time) (entity.Counts, error)
	ToggleLike(ctx context.Context, questionID, userID string) (*entity.LikeResult, error)
	IncrementViews(ctx context.Context, questionID string) (int, error)
	AcceptAnswer(ctx context.Context, questionID, commentID string) error
}

// Service handles business logic for the Q&A section
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a new question service
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create validates and stores a question asked by authorID
func (s *Service) Create(ctx context.Context, authorID string, form validate.QuestionForm) (*entity.Question, error) {
	if err := validate.Struct(&form); err != nil {
		return nil, err
	}

	q := &entity.Question{
		ID:        uuid.NewString(),
		Title:     form.Title,
		Content:   form.Content,
		Tags:      form.Tags,
		CreatedAt: s.now().UTC(),
	}
	q.User.ID = authorID

	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, q.ID, authorID)
}

// Get returns a question as seen by viewerID
func (s *Service) Get(ctx context.Context, id, viewerID string) (*entity.Question, error) {
	return s.repo.GetByID(ctx, id, viewerID)
}

// Exists reports whether a question exists
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// List returns a page of questions, newest first
func (s *Service) List(ctx context.Context, page, limit int, viewerID string) ([]entity.Question, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)
	return s.repo.List(ctx, viewerID, limit, (page-1)*limit)
}

// Featured returns the most liked questions
func (s *Service) Featured(ctx context.Context, limit int) ([]entity.Question, error) {
	return s.repo.Featured(ctx, clampTop(limit))
}

// TopExperts returns the users who answered the most
func (s *Service) TopExperts(ctx context.Context, limit int) ([]entity.TopExpert, error) {
	return s.repo.TopExperts(ctx, clampTop(limit))
}

// Stats summarizes the section; answers count the last seven days
func (s *Service) Stats(ctx context.Context) (entity.Stats, error) {
	c, err := s.repo.Counts(ctx, s.now().Add(-7*24*time.Hour))
	if err != nil {
		return entity.Stats{}, err
	}
	return entity.NewStats(c), nil
}

// ToggleLike flips the viewer's like on a question
func (s *Service) ToggleLike(ctx context.Context, id, viewerID string) (*entity.LikeResult, error) {
	return s.repo.ToggleLike(ctx, id, viewerID)
}

// RecordView counts one view of a question
func (s *Service) RecordView(ctx context.Context, id string) (*entity.ViewResult, error) {
	n, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entity.ViewResult{ViewCount: n}, nil
}

// AcceptAnswer lets the asker mark one comment of the thread as the accepted answer
func (s *Service) AcceptAnswer(ctx context.Context, id, viewerID, commentID string) (*entity.Question, error) {
	q, err := s.repo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if q.User.ID != viewerID {
		return nil, entity.ErrNotAsker
	}
	if err := s.repo.AcceptAnswer(ctx, id, commentID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id, viewerID)
}

func clampTop(limit int) int {
	if limit <= 0 {
		return defaultTopLimit
	}
	return min(limit, maxLimit)
}
