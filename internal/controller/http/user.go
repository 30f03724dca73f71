package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextstepz/community/internal/domain/user/entity"
	"github.com/nextstepz/community/internal/httpx/middleware"
	"github.com/nextstepz/community/internal/httpx/response"
)

// UserService defines the interface for public profiles and follows
type UserService interface {
	Summary(ctx context.Context, id string) (*entity.Summary, error)
	ToggleFollow(ctx context.Context, followerID, targetID string) (*entity.FollowResult, error)
	Suggestions(ctx context.Context, viewerID string, limit int) ([]entity.Summary, error)
}

// UserHandler handles HTTP requests for users
type UserHandler struct {
	users UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequireViewer).Get("/suggestions", h.Suggestions())
		r.Get("/{userId}", h.Get())
		r.With(middleware.RequireViewer).Post("/{userId}/follow", h.Follow())
	})
}

// Get handles GET /users/{userId}
func (h *UserHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := h.users.Summary(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			handleAccountError(w, err)
			return
		}
		response.OK(w, summary)
	}
}

// Follow handles POST /users/{userId}/follow
func (h *UserHandler) Follow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID := middleware.ViewerID(r.Context())

		result, err := h.users.ToggleFollow(r.Context(), viewerID, chi.URLParam(r, "userId"))
		if err != nil {
			handleAccountError(w, err)
			return
		}
		response.OK(w, result)
	}
}

// Suggestions handles GET /users/suggestions
func (h *UserHandler) Suggestions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID := middleware.ViewerID(r.Context())

		list, err := h.users.Suggestions(r.Context(), viewerID, queryInt(r, "limit", 3))
		if err != nil {
			handleAccountError(w, err)
			return
		}
		response.OK(w, list)
	}
}
