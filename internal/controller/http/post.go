package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextstepz/community/internal/domain/post/entity"
	"github.com/nextstepz/community/internal/domain/post/service"
	"github.com/nextstepz/community/internal/httpx/middleware"
	"github.com/nextstepz/community/internal/httpx/response"
	"github.com/nextstepz/community/internal/validate"
)

// PostService defines the interface for feed operations
type PostService interface {
	Create(ctx context.Context, authorID string, form validate.PostForm) (*entity.Post, error)
	Update(ctx context.Context, id, viewerID string, form validate.PostForm) (*entity.Post, error)
	Delete(ctx context.Context, id, viewerID string) error
	Get(ctx context.Context, id, viewerID string) (*entity.Post, error)
	List(ctx context.Context, in service.ListInput) (*entity.Page, error)
	ToggleLike(ctx context.Context, id, viewerID string) (*entity.LikeResult, error)
	Share(ctx context.Context, id string) (*entity.ShareResult, error)
}

// PostHandler handles HTTP requests for feed posts
type PostHandler struct {
	posts    PostService
	recorder LikeRecorder // optional
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// WithRecorder sets the recorder notified about like toggles
func (h *PostHandler) WithRecorder(rec LikeRecorder) *PostHandler {
	h.recorder = rec
	return h
}

// RegisterRoutes registers post routes
func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Get("/posts", h.List())
	r.Get("/posts/{postId}", h.Get())
	r.Post("/posts/{postId}/share", h.Share())

	// Public share link
	r.Get("/shared/{postId}", h.Get())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireViewer)
		r.Post("/posts", h.Create())
		r.Patch("/posts/{postId}", h.Update())
		r.Delete("/posts/{postId}", h.Delete())
		r.Post("/posts/{postId}/like", h.Like())
	})
}

// List handles GET /posts
func (h *PostHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page, err := h.posts.List(r.Context(), service.ListInput{
			Page:  queryInt(r, "page", 1),
			Limit: queryInt(r, "limit", 0),
			Filter: entity.FeedFilter{
				Category: entity.Category(q.Get("category")),
				Hashtags: queryList(r, "hashtag"),
				Topics:   queryList(r, "topic"),
				Search:   q.Get("q"),
			},
			ViewerID: middleware.ViewerID(r.Context()),
		})
		if err != nil {
			handlePostError(w, err)
			return
		}

		response.OK(w, page)
	}
}

// Get handles GET /posts/{postId} and GET /shared/{postId}
func (h *PostHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.posts.Get(r.Context(), chi.URLParam(r, "postId"), middleware.ViewerID(r.Context()))
		if err != nil {
			handlePostError(w, err)
			return
		}
		response.OK(w, p)
	}
}

// Create handles POST /posts
func (h *PostHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validate.PostForm
		if err := decodeJSON(r, &form); err != nil {
			response.BadRequest(w, MsgInvalidJSON)
			return
		}

		p, err := h.posts.Create(r.Context(), middleware.ViewerID(r.Context()), form)
		if err != nil {
			handlePostError(w, err)
			return
		}
		response.Created(w, p)
	}
}

// Update handles PATCH /posts/{postId}
func (h *PostHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validate.PostForm
		if err := decodeJSON(r, &form); err != nil {
			response.BadRequest(w, MsgInvalidJSON)
			return
		}

		p, err := h.posts.Update(r.Context(), chi.URLParam(r, "postId"), middleware.ViewerID(r.Context()), form)
		if err != nil {
			handlePostError(w, err)
			return
		}
		response.OK(w, p)
	}
}

// Delete handles DELETE /posts/{postId}
func (h *PostHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.posts.Delete(r.Context(), chi.URLParam(r, "postId"), middleware.ViewerID(r.Context()))
		if err != nil {
			handlePostError(w, err)
			return
		}
		response.Message(w, "Đã xóa bài viết")
	}
}

// Like handles POST /posts/{postId}/like
func (h *PostHandler) Like() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.posts.ToggleLike(r.Context(), chi.URLParam(r, "postId"), middleware.ViewerID(r.Context()))
		if err != nil {
			handlePostError(w, err)
			return
		}
		if h.recorder != nil {
			h.recorder.LikeToggled("post", result.IsLiked)
		}
		response.OK(w, result)
	}
}

// Share handles POST /posts/{postId}/share
func (h *PostHandler) Share() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.posts.Share(r.Context(), chi.URLParam(r, "postId"))
		if err != nil {
			handlePostError(w, err)
			return
		}
		response.OK(w, result)
	}
}

func handlePostError(w http.ResponseWriter, err error) {
	if writeValidation(w, err) {
		return
	}
	switch {
	case errors.Is(err, entity.ErrPostNotFound):
		response.NotFound(w, "Không tìm thấy bài viết")
	case errors.Is(err, entity.ErrNotOwner):
		response.Forbidden(w, "Bạn không có quyền chỉnh sửa bài viết này")
	default:
		response.InternalError(w, "internal server error")
	}
}
