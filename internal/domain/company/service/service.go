package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nextstepz/community/internal/cache"
	"github.com/nextstepz/community/internal/domain/company/entity"
)

const cacheKey = "companies"

// Repository defines the company storage the service needs
type Repository interface {
	List(ctx context.Context) ([]entity.Company, error)
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	IncrementViews(ctx context.Context, id string) error
	Upsert(ctx context.Context, companies []entity.Company) error
}

// Service serves the company directory
type Service struct {
	repo  Repository
	cache *cache.Cache
	ttl   time.Duration
}

// New creates a company service. A nil cache reads the database every time.
func New(repo Repository, c *cache.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{repo: repo, cache: c, ttl: ttl}
}

// DirectoryQuery selects one page of the filtered directory
type DirectoryQuery struct {
	Filter  entity.DirectoryFilter
	Sort    entity.SortOrder
	Page    int
	PerPage int
}

// Directory filters, sorts and paginates the directory
func (s *Service) Directory(ctx context.Context, q DirectoryQuery) (entity.Page, error) {
	all, err := cache.Load(ctx, s.cache, cacheKey, s.ttl, s.repo.List)
	if err != nil {
		return entity.Page{}, err
	}

	list := q.Filter.Apply(all)
	entity.SortCompanies(list, q.Sort)
	return entity.Paginate(list, q.Page, q.PerPage), nil
}

// Get returns a company and counts the visit
func (s *Service) Get(ctx context.Context, id string) (*entity.Company, error) {
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Import stores companies and drops the cached directory
func (s *Service) Import(ctx context.Context, companies []entity.Company) error {
	for i, c := range companies {
		if c.ID == "" || c.Name == "" {
			return fmt.Errorf("company %d: id and name are required", i)
		}
	}
	if err := s.repo.Upsert(ctx, companies); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
