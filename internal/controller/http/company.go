package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextstepz/community/internal/domain/company/entity"
	"github.com/nextstepz/community/internal/domain/company/service"
	"github.com/nextstepz/community/internal/httpx/response"
)

// CompanyService defines the interface for the company directory
type CompanyService interface {
	Directory(ctx context.Context, q service.DirectoryQuery) (entity.Page, error)
	Get(ctx context.Context, id string) (*entity.Company, error)
}

// CompanyHandler handles HTTP requests for the company directory
type CompanyHandler struct {
	companies CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companies CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// RegisterRoutes registers company routes
func (h *CompanyHandler) RegisterRoutes(r chi.Router) {
	r.Route("/companies", func(r chi.Router) {
		r.Get("/", h.List())
		r.Get("/{companyId}", h.Get())
	})
}

// List handles GET /companies
func (h *CompanyHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sort, err := entity.ParseSortOrder(r.URL.Query().Get("sort"))
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		page, err := h.companies.Directory(r.Context(), service.DirectoryQuery{
			Filter: entity.DirectoryFilter{
				Search:          r.URL.Query().Get("q"),
				Locations:       queryList(r, "location"),
				Sizes:           queryList(r, "size"),
				BusinessTypes:   queryList(r, "type"),
				EmploymentTypes: queryList(r, "employment"),
				Tags:            queryList(r, "tag"),
				MinRating:       queryFloat(r, "minRating"),
				SalaryMin:       queryFloat(r, "salaryMin"),
				SalaryMax:       queryFloat(r, "salaryMax"),
			},
			Sort:    sort,
			Page:    queryInt(r, "page", 1),
			PerPage: min(queryInt(r, "perPage", entity.DefaultPerPage), 50),
		})
		if err != nil {
			handleCompanyError(w, err)
			return
		}
		response.OK(w, page)
	}
}

// Get handles GET /companies/{companyId}
func (h *CompanyHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.companies.Get(r.Context(), chi.URLParam(r, "companyId"))
		if err != nil {
			handleCompanyError(w, err)
			return
		}
		response.OK(w, c)
	}
}

func handleCompanyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrCompanyNotFound):
		response.NotFound(w, "Không tìm thấy công ty")
	case errors.Is(err, entity.ErrUnknownSort):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
