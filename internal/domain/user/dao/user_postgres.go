package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextstepz/community/internal/database"
	"github.com/nextstepz/community/internal/domain/user/entity"
)

// UserPostgres implements user storage for PostgreSQL
type UserPostgres struct {
	pool *pgxpool.Pool
}

// NewUserPostgres creates a new PostgreSQL user repository
func NewUserPostgres(pool *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{pool: pool}
}

const userColumns = `id, email, phone, password_hash, username, first_name, last_name, avatar, role, company_name, created_at`

// Create inserts a new user
func (r *UserPostgres) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Email,
		u.Phone,
		u.PasswordHash,
		u.Username,
		u.FirstName,
		u.LastName,
		u.Avatar,
		string(u.Role),
		u.CompanyName,
		u.CreatedAt,
	)
	if database.IsUniqueViolation(err) {
		return entity.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserPostgres) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email
func (r *UserPostgres) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserPostgres) getOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	var u entity.User
	var role string

	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Avatar,
		&role,
		&u.CompanyName,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = entity.Role(role)
	return &u, nil
}

// Stats aggregates the activity counters of a user
func (r *UserPostgres) Stats(ctx context.Context, id string) (*entity.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE user_id = $1),
			(SELECT COUNT(*) FROM comments WHERE user_id = $1),
			(SELECT COUNT(*) FROM post_likes pl JOIN posts p ON p.id = pl.post_id WHERE p.user_id = $1),
			(SELECT COUNT(*) FROM follows WHERE following_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`

	var s entity.Stats
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.Posts,
		&s.Comments,
		&s.LikesReceived,
		&s.Followers,
		&s.Following,
	)
	if err != nil {
		return nil, fmt.Errorf("querying user stats: %w", err)
	}
	return &s, nil
}

// ToggleFollow follows or unfollows a user in one transaction and returns the new state
func (r *UserPostgres) ToggleFollow(ctx context.Context, followerID, followingID string) (*entity.FollowResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"DELETE FROM follows WHERE follower_id = $1 AND following_id = $2",
		followerID, followingID,
	)
	if err != nil {
		return nil, fmt.Errorf("deleting follow: %w", err)
	}

	following := false
	if tag.RowsAffected() == 0 {
		_, err := tx.Exec(ctx,
			"INSERT INTO follows (follower_id, following_id) VALUES ($1, $2)",
			followerID, followingID,
		)
		if database.IsForeignKeyViolation(err) {
			return nil, entity.ErrUserNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("inserting follow: %w", err)
		}
		following = true
	}

	var followers int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM follows WHERE following_id = $1", followingID,
	).Scan(&followers); err != nil {
		return nil, fmt.Errorf("counting followers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing follow: %w", err)
	}
	return &entity.FollowResult{IsFollowing: following, Followers: followers}, nil
}

// Suggestions returns a random sample of other users with follow counters
func (r *UserPostgres) Suggestions(ctx context.Context, excludeID string, limit int) ([]entity.Summary, error) {
	query := `
		SELECT u.id, u.username, u.first_name, u.last_name, u.avatar, u.role, u.company_name,
		       (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id),
		       (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id)
		FROM users u
		WHERE u.id <> $1
		ORDER BY random()
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	defer rows.Close()

	var out []entity.Summary
	for rows.Next() {
		var u entity.User
		var role string
		var s entity.Summary
		if err := rows.Scan(
			&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Avatar, &role, &u.CompanyName,
			&s.Followers, &s.Following,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		u.Role = entity.Role(role)

		s.ID = u.ID
		s.Name = u.DisplayName()
		s.Avatar = u.Avatar
		s.Role = u.Role
		s.Title = u.Title()
		out = append(out, s)
	}
	return out, rows.Err()
}
