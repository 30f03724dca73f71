package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextstepz/community/internal/domain/leaderboard/entity"
	userentity "github.com/nextstepz/community/internal/domain/user/entity"
)

// LeaderboardPostgres reads user activity aggregates from PostgreSQL
type LeaderboardPostgres struct {
	pool *pgxpool.Pool
}

// NewLeaderboardPostgres creates a new PostgreSQL leaderboard repository
func NewLeaderboardPostgres(pool *pgxpool.Pool) *LeaderboardPostgres {
	return &LeaderboardPostgres{pool: pool}
}

// Activity returns one aggregate per user. Active days are collected from since.
func (r *LeaderboardPostgres) Activity(ctx context.Context, since time.Time) ([]entity.Activity, error) {
	query := `
		SELECT u.id, u.username, u.first_name, u.last_name, u.avatar, u.role, u.company_name,
		       (SELECT COUNT(*) FROM posts p WHERE p.user_id = u.id) AS posts,
		       (SELECT COUNT(*) FROM post_likes l JOIN posts p ON p.id = l.post_id WHERE p.user_id = u.id) AS likes,
		       (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) AS followers,
		       ARRAY(
		           SELECT DISTINCT d FROM (
		               SELECT (p.created_at AT TIME ZONE 'UTC')::date AS d FROM posts p
		               WHERE p.user_id = u.id AND p.created_at >= $1
		               UNION
		               SELECT (c.created_at AT TIME ZONE 'UTC')::date FROM comments c
		               WHERE c.user_id = u.id AND c.created_at >= $1
		           ) days
		       ) AS active_days
		FROM users u
		ORDER BY u.created_at
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	defer rows.Close()

	var out []entity.Activity
	for rows.Next() {
		var u userentity.User
		var role string
		var a entity.Activity

		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.Avatar,
			&role,
			&u.CompanyName,
			&a.Posts,
			&a.LikesReceived,
			&a.Followers,
			&a.ActiveDays,
		); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}

		u.Role = userentity.Role(role)
		a.User = entity.User{
			ID:      u.ID,
			Name:    u.DisplayName(),
			Avatar:  u.Avatar,
			Role:    role,
			Title:   u.Title(),
			Company: u.CompanyName,
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity: %w", err)
	}
	return out, nil
}
