package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nextstepz/community/internal/domain/comment/entity"
	"github.com/nextstepz/community/internal/thread"
	"github.com/nextstepz/community/internal/validate"
)

// threadLimit caps how many rows one thread load reads. The newest rows are
// kept; a reply whose parent falls outside the window shows as a root.
const threadLimit = 2000

// Repository defines the storage the comment service needs
type Repository interface {
	Create(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id, viewerID string) (*entity.Comment, error)
	// ListByTarget returns the newest limit comments of a thread, newest first
	ListByTarget(ctx context.Context, target entity.Target, viewerID string, limit int) ([]entity.Comment, error)
	ToggleLike(ctx context.Context, commentID, userID string) (*entity.LikeResult, error)
	GetStatistics(ctx context.Context, targetType entity.TargetType, since time.Time, topLimit int) (*entity.Statistics, error)
}

// Service handles business logic for comments
type Service struct {
	repo  Repository
	limit int
	now   func() time.Time
}

// New creates a new comment service
func New(repo Repository) *Service {
	return &Service{repo: repo, limit: threadLimit, now: time.Now}
}

// Thread loads every comment under target and assembles the nested thread.
// Replies are oldest first, root comments newest first.
func (s *Service) Thread(ctx context.Context, target entity.Target, viewerID string) ([]thread.Nested, error) {
	if !target.Type.Valid() {
		return nil, entity.ErrUnknownTarget
	}

	rows, err := s.repo.ListByTarget(ctx, target, viewerID, s.limit)
	if err != nil {
		return nil, err
	}
	slices.Reverse(rows)

	nodes := make([]thread.Comment, 0, len(rows))
	for _, r := range rows {
		nodes = append(nodes, r.Node())
	}
	return thread.FromFlat(nodes).Nested(), nil
}

// AddInput represents input for adding a comment or reply
type AddInput struct {
	Target   entity.Target
	AuthorID string
	Content  string
	ParentID string
}

// Add stores a comment. A reply's parent must exist in the same thread.
func (s *Service) Add(ctx context.Context, in AddInput) (*thread.Comment, error) {
	if !in.Target.Type.Valid() {
		return nil, entity.ErrUnknownTarget
	}

	content, parentID, err := checkForm(in)
	if err != nil {
		return nil, err
	}

	if parentID != "" {
		parent, err := s.repo.GetByID(ctx, parentID, in.AuthorID)
		if errors.Is(err, entity.ErrCommentNotFound) {
			return nil, entity.ErrParentNotFound
		}
		if err != nil {
			return nil, err
		}
		if parent.Target != in.Target {
			return nil, entity.ErrParentMismatch
		}
	}

	c := &entity.Comment{
		ID:        uuid.NewString(),
		Target:    in.Target,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	c.Author.ID = in.AuthorID

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	stored, err := s.repo.GetByID(ctx, c.ID, in.AuthorID)
	if err != nil {
		return nil, err
	}
	node := stored.Node()
	return &node, nil
}

// checkForm validates content against the limit of the target kind
func checkForm(in AddInput) (string, string, error) {
	if in.Target.Type == entity.TargetQuestion {
		f := validate.AnswerForm{Content: in.Content, ParentID: in.ParentID}
		if err := validate.Struct(&f); err != nil {
			return "", "", err
		}
		return f.Content, f.ParentID, nil
	}

	f := validate.CommentForm{Content: in.Content, ParentID: in.ParentID}
	if err := validate.Struct(&f); err != nil {
		return "", "", err
	}
	return f.Content, f.ParentID, nil
}

// ToggleLike flips the viewer's like on a comment
func (s *Service) ToggleLike(ctx context.Context, commentID, viewerID string) (*entity.LikeResult, error) {
	return s.repo.ToggleLike(ctx, commentID, viewerID)
}

// GetStatistics returns comment activity of the last week for a target kind
func (s *Service) GetStatistics(ctx context.Context, targetType entity.TargetType, topLimit int) (*entity.Statistics, error) {
	if !targetType.Valid() {
		return nil, entity.ErrUnknownTarget
	}
	if topLimit <= 0 {
		topLimit = 5
	}
	return s.repo.GetStatistics(ctx, targetType, s.now().Add(-7*24*time.Hour), topLimit)
}
