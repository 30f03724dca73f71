package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nextstepz/community/internal/domain/post/dao"
	"github.com/nextstepz/community/internal/domain/post/entity"
	"github.com/nextstepz/community/internal/validate"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// Repository defines the storage the post service needs
type Repository interface {
	Create(ctx context.Context, p *entity.Post) error
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id, viewerID string) (*entity.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, opts dao.ListOptions) ([]entity.Post, int, error)
	ToggleLike(ctx context.Context, postID, userID string) (*entity.LikeResult, error)
	IncrementShare(ctx context.Context, postID string) (int, error)
}

// ImageStore removes uploaded images that no post refers to anymore
type ImageStore interface {
	DeleteURL(ctx context.Context, url string) error
}

// Service handles business logic for feed posts
type Service struct {
	repo   Repository
	images ImageStore // optional
	logger *slog.Logger
	now    func() time.Time
}

// New creates a new post service
func New(repo Repository) *Service {
	return &Service{repo: repo, logger: slog.Default(), now: time.Now}
}

// WithImageStore sets the store that deleted posts' images are removed from
func (s *Service) WithImageStore(images ImageStore, logger *slog.Logger) *Service {
	s.images = images
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Create publishes a post written by authorID
func (s *Service) Create(ctx context.Context, authorID string, form validate.PostForm) (*entity.Post, error) {
	if err := validate.Struct(&form); err != nil {
		return nil, err
	}

	p := &entity.Post{
		ID:        uuid.NewString(),
		Author:    entity.Author{ID: authorID},
		Content:   form.Content,
		Category:  entity.Category(form.Category),
		Hashtags:  form.Hashtags,
		Topics:    form.Topics,
		Images:    form.Images,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, p.ID, authorID)
}

// Update edits a post; only its author may do so
func (s *Service) Update(ctx context.Context, id, viewerID string, form validate.PostForm) (*entity.Post, error) {
	p, err := s.repo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if p.Author.ID != viewerID {
		return nil, entity.ErrNotOwner
	}
	if err := validate.Struct(&form); err != nil {
		return nil, err
	}

	p.Content = form.Content
	p.Category = entity.Category(form.Category)
	p.Hashtags = form.Hashtags
	p.Topics = form.Topics
	p.Images = form.Images
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id, viewerID)
}

// Delete removes a post; only its author may do so
func (s *Service) Delete(ctx context.Context, id, viewerID string) error {
	p, err := s.repo.GetByID(ctx, id, viewerID)
	if err != nil {
		return err
	}
	if p.Author.ID != viewerID {
		return entity.ErrNotOwner
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.images != nil {
		for _, url := range p.Images {
			// images linked from elsewhere are not ours to remove
			if err := s.images.DeleteURL(ctx, url); err != nil {
				s.logger.Warn("failed to remove post image", "post_id", id, "url", url, "error", err)
			}
		}
	}
	return nil
}

// Get returns one post as seen by viewerID
func (s *Service) Get(ctx context.Context, id, viewerID string) (*entity.Post, error) {
	return s.repo.GetByID(ctx, id, viewerID)
}

// Exists reports whether a post exists
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// ListInput selects a feed page
type ListInput struct {
	Page     int
	Limit    int
	Filter   entity.FeedFilter
	ViewerID string
}

// List returns one page of the feed, newest first or by trending score
func (s *Service) List(ctx context.Context, in ListInput) (*entity.Page, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = defaultLimit
	}
	if in.Limit > maxLimit {
		in.Limit = maxLimit
	}

	posts, total, err := s.repo.List(ctx, dao.ListOptions{
		Filter:   in.Filter,
		ViewerID: in.ViewerID,
		Limit:    in.Limit,
		Offset:   (in.Page - 1) * in.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &entity.Page{
		Posts:      posts,
		Pagination: entity.NewPagination(in.Page, in.Limit, total),
	}, nil
}

// ToggleLike flips the viewer's like on a post
func (s *Service) ToggleLike(ctx context.Context, id, viewerID string) (*entity.LikeResult, error) {
	return s.repo.ToggleLike(ctx, id, viewerID)
}

// Share counts a share of the post
func (s *Service) Share(ctx context.Context, id string) (*entity.ShareResult, error) {
	n, err := s.repo.IncrementShare(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entity.ShareResult{ShareCount: n}, nil
}
