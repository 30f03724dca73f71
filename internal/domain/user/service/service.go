package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nextstepz/community/internal/auth"
	"github.com/nextstepz/community/internal/domain/user/entity"
	"github.com/nextstepz/community/internal/validate"
)

// Repository defines the storage the user service needs
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Stats(ctx context.Context, id string) (*entity.Stats, error)
	ToggleFollow(ctx context.Context, followerID, followingID string) (*entity.FollowResult, error)
	Suggestions(ctx context.Context, excludeID string, limit int) ([]entity.Summary, error)
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

// Service handles accounts, sessions and follows
type Service struct {
	repo   Repository
	tokens TokenIssuer
	now    func() time.Time
}

// New creates a new user service
func New(repo Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens, now: time.Now}
}

// Register creates an account and signs the new user in
func (s *Service) Register(ctx context.Context, form validate.RegisterForm) (*entity.Session, error) {
	if err := validate.Struct(&form); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        form.Email,
		Phone:        form.Phone,
		PasswordHash: hash,
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Role:         entity.Role(form.Role),
		CompanyName:  form.CompanyName,
		CreatedAt:    s.now().UTC(),
	}
	if u.Role != entity.RoleEmployer {
		u.CompanyName = ""
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

// Login checks credentials and issues a token
func (s *Service) Login(ctx context.Context, form validate.LoginForm) (*entity.Session, error) {
	if err := validate.Struct(&form); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, form.Email)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := auth.CheckPassword(u.PasswordHash, form.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, entity.ErrInvalidCredentials
		}
		return nil, err
	}
	return s.session(u)
}

func (s *Service) session(u *entity.User) (*entity.Session, error) {
	token, exp, err := s.tokens.Issue(auth.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	})
	if err != nil {
		return nil, err
	}
	return &entity.Session{User: *u, AccessToken: token, ExpiresAt: exp}, nil
}

// Get returns a user by id
func (s *Service) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Summary returns the public card of a user with its counters
func (s *Service) Summary(ctx context.Context, id string) (*entity.Summary, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.Stats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &entity.Summary{
		ID:        u.ID,
		Name:      u.DisplayName(),
		Avatar:    u.Avatar,
		Role:      u.Role,
		Title:     u.Title(),
		Verified:  stats.Verified(),
		Followers: stats.Followers,
		Following: stats.Following,
	}, nil
}

// ToggleFollow makes followerID follow targetID, or stop following
func (s *Service) ToggleFollow(ctx context.Context, followerID, targetID string) (*entity.FollowResult, error) {
	if followerID == targetID {
		return nil, entity.ErrSelfFollow
	}
	return s.repo.ToggleFollow(ctx, followerID, targetID)
}

// Suggestions returns up to limit users the viewer may want to follow
func (s *Service) Suggestions(ctx context.Context, viewerID string, limit int) ([]entity.Summary, error) {
	if limit <= 0 || limit > 20 {
		limit = 3
	}
	list, err := s.repo.Suggestions(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.Summary{}
	}
	return list, nil
}
