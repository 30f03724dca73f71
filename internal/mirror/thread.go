// Package mirror keeps client-side copies of server state for one viewer:
// a comment thread, a question or a post. Mutations are sent to the API and
// the local copy is reconciled with what the server answers.
package mirror

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	commententity "github.com/nextstepz/community/internal/domain/comment/entity"
	"github.com/nextstepz/community/internal/httpx/upstream/community"
	"github.com/nextstepz/community/internal/thread"
)

var (
	ErrEmptyContent     = errors.New("comment content is empty")
	ErrSubmitInProgress = errors.New("a comment is already being submitted")
)

// CommentAPI is the part of the community API a thread mirror calls
type CommentAPI interface {
	Comments(ctx context.Context, target commententity.Target) ([]thread.Nested, error)
	AddComment(ctx context.Context, target commententity.Target, content, parentID string) (*thread.Comment, error)
	LikeComment(ctx context.Context, id string) (community.LikeState, error)
}

// Thread mirrors the comment thread under one post or question
type Thread struct {
	api    CommentAPI
	target commententity.Target
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	tree       *thread.Tree
	expanded   thread.Expanded
	submitting bool
}

// NewThread creates an empty mirror; call Load to fill it
func NewThread(api CommentAPI, target commententity.Target, logger *slog.Logger) *Thread {
	if logger == nil {
		logger = slog.Default()
	}
	return &Thread{
		api:    api,
		target: target,
		logger: logger.With("target_type", target.Type, "target_id", target.ID),
		now:    time.Now,
		tree:   thread.New(),
	}
}

// Load replaces the local tree with the server's. Expansion state is kept.
func (t *Thread) Load(ctx context.Context) error {
	nested, err := t.api.Comments(ctx, t.target)
	if err != nil {
		t.logger.Error("failed to load comments", "error", err)
		return err
	}

	tree := thread.FromNested(nested)
	t.mu.Lock()
	t.tree = tree
	t.mu.Unlock()
	return nil
}

// Reply submits a comment, or a reply when parentID is set, then reloads the
// thread and expands the parent so the reply is visible.
func (t *Thread) Reply(ctx context.Context, parentID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}

	t.mu.Lock()
	if t.submitting {
		t.mu.Unlock()
		return ErrSubmitInProgress
	}
	t.submitting = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.submitting = false
		t.mu.Unlock()
	}()

	if _, err := t.api.AddComment(ctx, t.target, content, parentID); err != nil {
		t.logger.Error("failed to add comment", "parent_id", parentID, "error", err)
		return err
	}

	if err := t.Load(ctx); err != nil {
		return err
	}

	if parentID != "" {
		t.mu.Lock()
		t.expanded = t.expanded.With(parentID)
		t.mu.Unlock()
	}
	return nil
}

// ReplyLocal appends a reply without talking to the server. The reply gets a
// temporary id and the parent is expanded.
func (t *Thread) ReplyLocal(parentID, content string, author thread.Author) (thread.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return thread.Comment{}, ErrEmptyContent
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	tree, reply, err := t.tree.AddReply(parentID, content, author, t.now())
	if err != nil {
		return thread.Comment{}, err
	}
	t.tree = tree
	t.expanded = t.expanded.With(parentID)
	return reply, nil
}

// ToggleLike flips the like locally, then asks the server. A server answer
// that differs from the guess overwrites it. A failed request restores the
// previous state unless a reload already replaced the guessed one.
func (t *Thread) ToggleLike(ctx context.Context, id string) error {
	t.mu.Lock()
	before, ok := t.tree.Get(id)
	if !ok {
		t.mu.Unlock()
		return thread.ErrCommentNotFound
	}
	tree, err := t.tree.ToggleLike(id)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	guess, _ := tree.Get(id)
	t.tree = tree
	t.mu.Unlock()

	state, err := t.api.LikeComment(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		t.logger.Error("failed to toggle comment like", "comment_id", id, "error", err)
		cur, ok := t.tree.Get(id)
		if ok && cur.IsLiked == guess.IsLiked && cur.Likes == guess.Likes {
			if restored, rerr := t.tree.SetLike(id, before.IsLiked, before.Likes); rerr == nil {
				t.tree = restored
			}
		}
		return err
	}

	if synced, serr := t.tree.SetLike(id, state.IsLiked, state.LikesCount); serr == nil {
		t.tree = synced
	}
	return nil
}

// ToggleExpand opens or closes the replies of a comment
func (t *Thread) ToggleExpand(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expanded = t.expanded.Toggle(id)
	return t.expanded.Has(id)
}

// Expanded returns the ids whose replies are open
func (t *Thread) Expanded() thread.Expanded {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded
}

// Tree returns the current snapshot. Snapshots are never modified.
func (t *Thread) Tree() *thread.Tree {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree
}

// TotalComments counts every comment of the thread, replies included
func (t *Thread) TotalComments() int {
	return t.Tree().Len()
}
