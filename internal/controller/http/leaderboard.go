package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextstepz/community/internal/domain/leaderboard/entity"
	"github.com/nextstepz/community/internal/domain/leaderboard/service"
	"github.com/nextstepz/community/internal/httpx/response"
)

// LeaderboardService defines the interface for reading the leaderboard
type LeaderboardService interface {
	Top(ctx context.Context, q service.Query) ([]entity.Entry, error)
}

// LeaderboardHandler handles HTTP requests for the leaderboard
type LeaderboardHandler struct {
	board LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(board LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// RegisterRoutes registers leaderboard routes
func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.Top())
}

// Top handles GET /leaderboard
func (h *LeaderboardHandler) Top() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sort, err := entity.ParseSortField(r.URL.Query().Get("sort"))
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		entries, err := h.board.Top(r.Context(), service.Query{
			Limit:  queryInt(r, "limit", 0),
			Sort:   sort,
			Search: r.URL.Query().Get("q"),
		})
		if err != nil {
			if errors.Is(err, entity.ErrUnknownSort) {
				response.BadRequest(w, err.Error())
				return
			}
			response.InternalError(w, "internal server error")
			return
		}
		response.OK(w, entries)
	}
}
