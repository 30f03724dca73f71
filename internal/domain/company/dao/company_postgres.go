package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextstepz/community/internal/domain/company/entity"
)

// CompanyPostgres implements company storage for PostgreSQL
type CompanyPostgres struct {
	pool *pgxpool.Pool
}

// NewCompanyPostgres creates a new PostgreSQL company repository
func NewCompanyPostgres(pool *pgxpool.Pool) *CompanyPostgres {
	return &CompanyPostgres{pool: pool}
}

const selectCompany = `
	SELECT id, name, logo, description, industries, location, size, business_type,
	       employment_types, tags, rating, salary_min, salary_max, views, founded_at
	FROM companies
`

// List returns the whole directory in insertion order
func (r *CompanyPostgres) List(ctx context.Context) ([]entity.Company, error) {
	rows, err := r.pool.Query(ctx, selectCompany+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	out := []entity.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating companies: %w", err)
	}
	return out, nil
}

// GetByID retrieves a single company
func (r *CompanyPostgres) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	c, err := scanCompany(r.pool.QueryRow(ctx, selectCompany+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning company: %w", err)
	}
	return c, nil
}

// IncrementViews bumps the view counter used for trending order
func (r *CompanyPostgres) IncrementViews(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "UPDATE companies SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("incrementing views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrCompanyNotFound
	}
	return nil
}

// Upsert inserts companies or replaces the ones with the same id
func (r *CompanyPostgres) Upsert(ctx context.Context, companies []entity.Company) error {
	query := `
		INSERT INTO companies (id, name, logo, description, industries, location, size, business_type,
		                       employment_types, tags, rating, salary_min, salary_max, views, founded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			logo = EXCLUDED.logo,
			description = EXCLUDED.description,
			industries = EXCLUDED.industries,
			location = EXCLUDED.location,
			size = EXCLUDED.size,
			business_type = EXCLUDED.business_type,
			employment_types = EXCLUDED.employment_types,
			tags = EXCLUDED.tags,
			rating = EXCLUDED.rating,
			salary_min = EXCLUDED.salary_min,
			salary_max = EXCLUDED.salary_max,
			founded_at = EXCLUDED.founded_at
	`

	batch := &pgx.Batch{}
	for _, c := range companies {
		var founded *time.Time
		if !c.FoundedAt.IsZero() {
			founded = &c.FoundedAt
		}
		batch.Queue(query,
			c.ID,
			c.Name,
			c.Logo,
			c.Description,
			nonNil(c.Industries),
			c.Location,
			c.Size,
			c.BusinessType,
			nonNil(c.EmploymentTypes),
			nonNil(c.Tags),
			c.Rating,
			c.SalaryMin,
			c.SalaryMax,
			c.Views,
			founded,
		)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting companies: %w", err)
	}
	return nil
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	var founded *time.Time

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Logo,
		&c.Description,
		&c.Industries,
		&c.Location,
		&c.Size,
		&c.BusinessType,
		&c.EmploymentTypes,
		&c.Tags,
		&c.Rating,
		&c.SalaryMin,
		&c.SalaryMax,
		&c.Views,
		&founded,
	)
	if err != nil {
		return nil, err
	}
	if founded != nil {
		c.FoundedAt = *founded
	}
	return &c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
