package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextstepz/community/internal/domain/question/entity"
	"github.com/nextstepz/community/internal/httpx/middleware"
	"github.com/nextstepz/community/internal/httpx/response"
	"github.com/nextstepz/community/internal/validate"
)

// QuestionService defines the interface for Q&A operations
type QuestionService interface {
	Create(ctx context.Context, authorID string, form validate.QuestionForm) (*entity.Question, error)
	Get(ctx context.Context, id, viewerID string) (*entity.Question, error)
	List(ctx context.Context, page, limit int, viewerID string) ([]entity.Question, error)
	Featured(ctx context.Context, limit int) ([]entity.Question, error)
	TopExperts(ctx context.Context, limit int) ([]entity.TopExpert, error)
	Stats(ctx context.Context) (entity.Stats, error)
	ToggleLike(ctx context.Context, id, viewerID string) (*entity.LikeResult, error)
	RecordView(ctx context.Context, id string) (*entity.ViewResult, error)
	AcceptAnswer(ctx context.Context, id, viewerID, commentID string) (*entity.Question, error)
}

// QuestionHandler handles HTTP requests for the Q&A section
type QuestionHandler struct {
	questions QuestionService
	recorder  LikeRecorder // optional
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(questions QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// WithRecorder sets the recorder notified about like toggles
func (h *QuestionHandler) WithRecorder(rec LikeRecorder) *QuestionHandler {
	h.recorder = rec
	return h
}

// RegisterRoutes registers question routes
func (h *QuestionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/questions", h.List())
	r.Get("/questions/featured", h.Featured())
	r.Get("/questions/top-experts", h.TopExperts())
	r.Get("/questions/stats", h.Stats())
	r.Get("/questions/{questionId}", h.Get())
	r.Post("/questions/{questionId}/view", h.View())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireViewer)
		r.Post("/questions", h.Create())
		r.Post("/questions/{questionId}/like", h.Like())
		r.Post("/questions/{questionId}/accept", h.Accept())
	})
}

// List handles GET /questions
func (h *QuestionHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.questions.List(r.Context(),
			queryInt(r, "page", 1),
			queryInt(r, "limit", 0),
			middleware.ViewerID(r.Context()),
		)
		if err != nil {
			handleQuestionError(w, err)
			return
		}
		response.OK(w, list)
	}
}

// Featured handles GET /questions/featured
func (h *QuestionHandler) Featured() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.questions.Featured(r.Context(), queryInt(r, "limit", 0))
		if err != nil {
			handleQuestionError(w, err)
			return
		}
		response.OK(w, list)
	}
}

// TopExperts handles GET /questions/top-experts
func (h *QuestionHandler) TopExperts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.questions.TopExperts(r.Context(), queryInt(r, "limit", 0))
		if err != nil {
			handleQuestionError(w, err)
			return
		}
		response.OK(w, list)
	}
}

// Stats handles GET /questions/stats
func (h *QuestionHandler) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.questions.Stats(r.Context())
		if err != nil {
			handleQuestionError(w, err)
			return
		}
		response.OK(w, stats)
	}
}

// Get handles GET /questions/{questionId}
func (h *QuestionHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := h.questions.Get(r.Context(), chi.URLParam(r, "questionId"), middleware.ViewerID(r.Context()))
		if err != nil {
			handleQuestionError(w, err)
			return
		}
		response.OK(w, q)
	}
}

// Create handles POST /questions
func (h *QuestionHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validate.QuestionForm
		if err := decodeJSON(r, &form); err != nil {
			response.BadRequest(w, MsgInvalidJSON)
			return
		}

		q, err := h.questions.Create(r.Context(), middleware.ViewerID(r.Context()), form)
		if err != nil {
			handleQuestionError(w, err)
			return
		}
		response.Created(w, q)
	}
}

// Like handles POST /questions/{questionId}/like
func (h *QuestionHandler) Like() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.questions.ToggleLike(r.Context(), chi.URLParam(r, "questionId"), middleware.ViewerID(r.Context()))
		if err != nil {
			handleQuestionError(w, err)
			return
		}
		if h.recorder != nil {
			h.recorder.LikeToggled("question", result.IsLiked)
		}
		response.OK(w, result)
	}
}

// View handles POST /questions/{questionId}/view
func (h *QuestionHandler) View() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.questions.RecordView(r.Context(), chi.URLParam(r, "questionId"))
		if err != nil {
			handleQuestionError(w, err)
			return
		}
		response.OK(w, result)
	}
}

// AcceptRequest represents the request body for accepting an answer
type AcceptRequest struct {
	CommentID string `json:"commentId"`
}

// Accept handles POST /questions/{questionId}/accept
func (h *QuestionHandler) Accept() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AcceptRequest
		if err := decodeJSON(r, &req); err != nil {
			response.BadRequest(w, MsgInvalidJSON)
			return
		}
		if req.CommentID == "" {
			response.BadRequest(w, "commentId is required")
			return
		}

		q, err := h.questions.AcceptAnswer(r.Context(),
			chi.URLParam(r, "questionId"),
			middleware.ViewerID(r.Context()),
			req.CommentID,
		)
		if err != nil {
			handleQuestionError(w, err)
			return
		}
		response.OK(w, q)
	}
}

func handleQuestionError(w http.ResponseWriter, err error) {
	if writeValidation(w, err) {
		return
	}
	switch {
	case errors.Is(err, entity.ErrQuestionNotFound):
		response.NotFound(w, "Không tìm thấy câu hỏi")
	case errors.Is(err, entity.ErrAnswerNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrNotAsker):
		response.Forbidden(w, "Chỉ người đặt câu hỏi mới có thể chọn câu trả lời")
	default:
		response.InternalError(w, "internal server error")
	}
}
