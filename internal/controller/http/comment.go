package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextstepz/community/internal/domain/comment/entity"
	"github.com/nextstepz/community/internal/domain/comment/policy"
	"github.com/nextstepz/community/internal/httpx/middleware"
	"github.com/nextstepz/community/internal/httpx/response"
	"github.com/nextstepz/community/internal/thread"
)

// CommentPolicy defines the interface for comment operations
type CommentPolicy interface {
	GetThread(ctx context.Context, in policy.GetThreadInput) ([]thread.Nested, error)
	AddComment(ctx context.Context, in policy.AddCommentInput) (*thread.Comment, error)
	ToggleLike(ctx context.Context, commentID, viewerID string) (*entity.LikeResult, error)
	GetStatistics(ctx context.Context, targetType entity.TargetType, topLimit int) (*entity.Statistics, error)
}

// CommentHandler handles HTTP requests for comment threads
type CommentHandler struct {
	policy CommentPolicy
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(p CommentPolicy) *CommentHandler {
	return &CommentHandler{policy: p}
}

// RegisterRoutes registers comment routes
func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	// Threads under posts and questions
	r.Get("/posts/{targetId}/comments", h.GetThread(entity.TargetPost))
	r.Get("/questions/{targetId}/comments", h.GetThread(entity.TargetQuestion))

	r.Get("/comments/statistics", h.GetStatistics())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireViewer)
		r.Post("/posts/{targetId}/comments", h.AddComment(entity.TargetPost))
		r.Post("/questions/{targetId}/comments", h.AddComment(entity.TargetQuestion))
		r.Post("/comments/{commentId}/like", h.Like())
	})
}

// GetThread handles GET /{posts|questions}/{targetId}/comments
func (h *CommentHandler) GetThread(targetType entity.TargetType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comments, err := h.policy.GetThread(r.Context(), policy.GetThreadInput{
			Target:   entity.Target{Type: targetType, ID: chi.URLParam(r, "targetId")},
			ViewerID: middleware.ViewerID(r.Context()),
		})
		if err != nil {
			handleCommentError(w, err)
			return
		}
		response.OK(w, comments)
	}
}

// AddCommentRequest represents the request body for a comment or reply
type AddCommentRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parentId,omitempty"`
}

// AddComment handles POST /{posts|questions}/{targetId}/comments
func (h *CommentHandler) AddComment(targetType entity.TargetType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddCommentRequest
		if err := decodeJSON(r, &req); err != nil {
			response.BadRequest(w, MsgInvalidJSON)
			return
		}

		c, err := h.policy.AddComment(r.Context(), policy.AddCommentInput{
			Target:   entity.Target{Type: targetType, ID: chi.URLParam(r, "targetId")},
			AuthorID: middleware.ViewerID(r.Context()),
			Content:  req.Content,
			ParentID: req.ParentID,
		})
		if err != nil {
			handleCommentError(w, err)
			return
		}
		response.Created(w, c)
	}
}

// Like handles POST /comments/{commentId}/like
func (h *CommentHandler) Like() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.policy.ToggleLike(r.Context(), chi.URLParam(r, "commentId"), middleware.ViewerID(r.Context()))
		if err != nil {
			handleCommentError(w, err)
			return
		}
		response.OK(w, result)
	}
}

// GetStatistics handles GET /comments/statistics
func (h *CommentHandler) GetStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetType := entity.TargetPost
		if t := r.URL.Query().Get("target"); t != "" {
			targetType = entity.TargetType(t)
		}
		if !targetType.Valid() {
			response.BadRequest(w, entity.ErrUnknownTarget.Error())
			return
		}

		top := min(queryInt(r, "top", 5), 20)

		stats, err := h.policy.GetStatistics(r.Context(), targetType, top)
		if err != nil {
			handleCommentError(w, err)
			return
		}
		response.OK(w, stats)
	}
}

func handleCommentError(w http.ResponseWriter, err error) {
	if writeValidation(w, err) {
		return
	}
	switch {
	case errors.Is(err, entity.ErrTargetNotFound):
		response.NotFound(w, "Không tìm thấy nội dung")
	case errors.Is(err, entity.ErrCommentNotFound), errors.Is(err, thread.ErrCommentNotFound):
		response.NotFound(w, "Không tìm thấy bình luận")
	case errors.Is(err, entity.ErrParentNotFound):
		response.NotFound(w, "Không tìm thấy bình luận gốc")
	case errors.Is(err, entity.ErrParentMismatch), errors.Is(err, entity.ErrUnknownTarget):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
