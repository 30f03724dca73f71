package policy

import (
	"context"

	"github.com/nextstepz/community/internal/domain/comment/entity"
	"github.com/nextstepz/community/internal/domain/comment/service"
	"github.com/nextstepz/community/internal/thread"
)

// TargetChecker reports whether a post or question exists
type TargetChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Recorder receives counters about comment activity
type Recorder interface {
	CommentCreated(target string, reply bool)
	LikeToggled(target string, liked bool)
}

// CommentService defines the interface for comment operations
type CommentService interface {
	Thread(ctx context.Context, target entity.Target, viewerID string) ([]thread.Nested, error)
	Add(ctx context.Context, in service.AddInput) (*thread.Comment, error)
	ToggleLike(ctx context.Context, commentID, viewerID string) (*entity.LikeResult, error)
	GetStatistics(ctx context.Context, targetType entity.TargetType, topLimit int) (*entity.Statistics, error)
}

// Policy checks the commented content before touching threads
type Policy struct {
	svc      CommentService
	targets  map[entity.TargetType]TargetChecker
	recorder Recorder // optional
}

// New creates a new comment policy
func New(svc CommentService, posts, questions TargetChecker) *Policy {
	return &Policy{
		svc: svc,
		targets: map[entity.TargetType]TargetChecker{
			entity.TargetPost:     posts,
			entity.TargetQuestion: questions,
		},
	}
}

// WithRecorder sets the Recorder notified about new comments and likes
func (p *Policy) WithRecorder(r Recorder) *Policy {
	p.recorder = r
	return p
}

func (p *Policy) ensureTarget(ctx context.Context, target entity.Target) error {
	checker, ok := p.targets[target.Type]
	if !ok || checker == nil {
		return entity.ErrUnknownTarget
	}
	exists, err := checker.Exists(ctx, target.ID)
	if err != nil {
		return err
	}
	if !exists {
		return entity.ErrTargetNotFound
	}
	return nil
}

// GetThreadInput represents input for loading a thread
type GetThreadInput struct {
	Target   entity.Target
	ViewerID string
}

// GetThread returns the nested thread under a post or question
func (p *Policy) GetThread(ctx context.Context, in GetThreadInput) ([]thread.Nested, error) {
	if err := p.ensureTarget(ctx, in.Target); err != nil {
		return nil, err
	}
	return p.svc.Thread(ctx, in.Target, in.ViewerID)
}

// AddCommentInput represents input for commenting
type AddCommentInput struct {
	Target   entity.Target
	AuthorID string
	Content  string
	ParentID string
}

// AddComment adds a comment or reply to a post or question
func (p *Policy) AddComment(ctx context.Context, in AddCommentInput) (*thread.Comment, error) {
	if err := p.ensureTarget(ctx, in.Target); err != nil {
		return nil, err
	}

	c, err := p.svc.Add(ctx, service.AddInput{
		Target:   in.Target,
		AuthorID: in.AuthorID,
		Content:  in.Content,
		ParentID: in.ParentID,
	})
	if err != nil {
		return nil, err
	}

	if p.recorder != nil {
		p.recorder.CommentCreated(string(in.Target.Type), c.ParentID != "")
	}
	return c, nil
}

// ToggleLike flips the viewer's like on a comment
func (p *Policy) ToggleLike(ctx context.Context, commentID, viewerID string) (*entity.LikeResult, error) {
	res, err := p.svc.ToggleLike(ctx, commentID, viewerID)
	if err != nil {
		return nil, err
	}
	if p.recorder != nil {
		p.recorder.LikeToggled("comment", res.IsLiked)
	}
	return res, nil
}

// GetStatistics returns weekly comment activity for a target kind
func (p *Policy) GetStatistics(ctx context.Context, targetType entity.TargetType, topLimit int) (*entity.Statistics, error) {
	return p.svc.GetStatistics(ctx, targetType, topLimit)
}
