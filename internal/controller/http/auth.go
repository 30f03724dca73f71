package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextstepz/community/internal/domain/user/entity"
	"github.com/nextstepz/community/internal/httpx/response"
	"github.com/nextstepz/community/internal/validate"
)

// AccountService defines the interface for sign-up and sign-in
type AccountService interface {
	Register(ctx context.Context, form validate.RegisterForm) (*entity.Session, error)
	Login(ctx context.Context, form validate.LoginForm) (*entity.Session, error)
}

// AuthHandler handles HTTP requests for accounts
type AuthHandler struct {
	accounts AccountService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register())
		r.Post("/login", h.Login())
	})
}

// Register handles POST /auth/register
func (h *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validate.RegisterForm
		if err := decodeJSON(r, &form); err != nil {
			response.BadRequest(w, MsgInvalidJSON)
			return
		}

		session, err := h.accounts.Register(r.Context(), form)
		if err != nil {
			handleAccountError(w, err)
			return
		}

		response.Created(w, session)
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validate.LoginForm
		if err := decodeJSON(r, &form); err != nil {
			response.BadRequest(w, MsgInvalidJSON)
			return
		}

		session, err := h.accounts.Login(r.Context(), form)
		if err != nil {
			handleAccountError(w, err)
			return
		}

		response.OK(w, session)
	}
}

func handleAccountError(w http.ResponseWriter, err error) {
	if writeValidation(w, err) {
		return
	}
	switch {
	case errors.Is(err, entity.ErrEmailTaken):
		response.Conflict(w, "Email đã được sử dụng")
	case errors.Is(err, entity.ErrInvalidCredentials):
		response.Unauthorized(w, "Email hoặc mật khẩu không đúng")
	case errors.Is(err, entity.ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrSelfFollow):
		response.BadRequest(w, "Bạn không thể theo dõi chính mình")
	default:
		response.InternalError(w, "internal server error")
	}
}
