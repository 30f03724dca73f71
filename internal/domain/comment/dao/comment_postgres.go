package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextstepz/community/internal/domain/comment/entity"
	userentity "github.com/nextstepz/community/internal/domain/user/entity"
)

// CommentPostgres implements comment storage for PostgreSQL
type CommentPostgres struct {
	pool *pgxpool.Pool
}

// NewCommentPostgres creates a new PostgreSQL comment repository
func NewCommentPostgres(pool *pgxpool.Pool) *CommentPostgres {
	return &CommentPostgres{pool: pool}
}

const selectComment = `
	SELECT c.id, c.target_type, c.target_id, c.parent_id, c.content, c.created_at,
	       u.id, u.username, u.first_name, u.last_name, u.avatar, u.role,
	       (SELECT COUNT(*) FROM posts p WHERE p.user_id = u.id) AS author_posts,
	       (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) AS author_followers,
	       (SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = c.id) AS likes_count,
	       EXISTS (SELECT 1 FROM comment_likes l WHERE l.comment_id = c.id AND l.user_id = $1) AS is_liked
	FROM comments c
	JOIN users u ON u.id = c.user_id
`

// Create inserts a comment
func (r *CommentPostgres) Create(ctx context.Context, c *entity.Comment) error {
	query := `
		INSERT INTO comments (id, target_type, target_id, parent_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var parentID *string
	if c.ParentID != "" {
		parentID = &c.ParentID
	}

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		string(c.Target.Type),
		c.Target.ID,
		parentID,
		c.Author.ID,
		c.Content,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment as seen by viewerID
func (r *CommentPostgres) GetByID(ctx context.Context, id, viewerID string) (*entity.Comment, error) {
	row := r.pool.QueryRow(ctx, selectComment+" WHERE c.id = $2", viewerID, id)

	c, err := scanComment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning comment: %w", err)
	}
	return c, nil
}

// listThread picks the newest rows of a thread so a fresh reply is never cut off
const listThread = selectComment + `
	WHERE c.target_type = $2 AND c.target_id = $3
	ORDER BY c.created_at DESC, c.id DESC
	LIMIT $4
`

// ListByTarget returns the newest limit comments of a thread, newest first
func (r *CommentPostgres) ListByTarget(ctx context.Context, target entity.Target, viewerID string, limit int) ([]entity.Comment, error) {
	query := listThread

	rows, err := r.pool.Query(ctx, query, viewerID, string(target.Type), target.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	comments := []entity.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	return comments, nil
}

// ToggleLike likes or unlikes a comment and returns the resulting state
func (r *CommentPostgres) ToggleLike(ctx context.Context, commentID, userID string) (*entity.LikeResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked string
	err = tx.QueryRow(ctx, "SELECT id FROM comments WHERE id = $1 FOR UPDATE", commentID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("locking comment: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2", commentID, userID)
	if err != nil {
		return nil, fmt.Errorf("deleting like: %w", err)
	}
	liked := false
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, "INSERT INTO comment_likes (comment_id, user_id) VALUES ($1, $2)", commentID, userID); err != nil {
			return nil, fmt.Errorf("inserting like: %w", err)
		}
		liked = true
	}

	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1", commentID).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing like: %w", err)
	}
	return &entity.LikeResult{IsLiked: liked, LikesCount: count}, nil
}

// GetStatistics aggregates comment activity for one target kind
func (r *CommentPostgres) GetStatistics(ctx context.Context, targetType entity.TargetType, since time.Time, topLimit int) (*entity.Statistics, error) {
	var stats entity.Statistics

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE parent_id IS NOT NULL),
		       COUNT(*) FILTER (WHERE created_at >= $2),
		       COALESCE(COUNT(*)::float / NULLIF(COUNT(DISTINCT target_id), 0), 0)
		FROM comments
		WHERE target_type = $1
	`, string(targetType), since).Scan(
		&stats.TotalComments,
		&stats.Replies,
		&stats.SinceCount,
		&stats.AvgPerTarget,
	)
	if err != nil {
		return nil, fmt.Errorf("querying comment statistics: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT target_id, COUNT(*) AS n
		FROM comments
		WHERE target_type = $1
		GROUP BY target_id
		ORDER BY n DESC, target_id
		LIMIT $2
	`, string(targetType), topLimit)
	if err != nil {
		return nil, fmt.Errorf("querying top targets: %w", err)
	}
	defer rows.Close()

	stats.TopTargets = []entity.TopTarget{}
	for rows.Next() {
		var t entity.TopTarget
		if err := rows.Scan(&t.TargetID, &t.CommentsCount); err != nil {
			return nil, fmt.Errorf("scanning top target: %w", err)
		}
		stats.TopTargets = append(stats.TopTargets, t)
	}
	return &stats, rows.Err()
}

func scanComment(row pgx.Row) (*entity.Comment, error) {
	var c entity.Comment
	var targetType, role string
	var parentID *string
	var u userentity.User
	var stats userentity.Stats

	err := row.Scan(
		&c.ID,
		&targetType,
		&c.Target.ID,
		&parentID,
		&c.Content,
		&c.CreatedAt,
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Avatar,
		&role,
		&stats.Posts,
		&stats.Followers,
		&c.LikesCount,
		&c.IsLiked,
	)
	if err != nil {
		return nil, err
	}

	c.Target.Type = entity.TargetType(targetType)
	if parentID != nil {
		c.ParentID = *parentID
	}
	c.Author.ID = u.ID
	c.Author.Name = u.DisplayName()
	c.Author.Avatar = u.Avatar
	c.Author.Role = role
	c.Author.Verified = stats.Verified()
	return &c, nil
}
