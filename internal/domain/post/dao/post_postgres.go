package dao

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextstepz/community/internal/domain/post/entity"
	userentity "github.com/nextstepz/community/internal/domain/user/entity"
)

// ListOptions selects one page of the feed as seen by a viewer
type ListOptions struct {
	Filter   entity.FeedFilter
	ViewerID string
	Limit    int
	Offset   int
}

// PostPostgres implements post storage for PostgreSQL
type PostPostgres struct {
	pool *pgxpool.Pool
}

// NewPostPostgres creates a new PostgreSQL post repository
func NewPostPostgres(pool *pgxpool.Pool) *PostPostgres {
	return &PostPostgres{pool: pool}
}

const selectPost = `
	SELECT p.id, p.content, p.category, p.hashtags, p.topics, p.images, p.share_count, p.created_at, p.updated_at,
	       u.id, u.username, u.first_name, u.last_name, u.avatar, u.role, u.company_name,
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS likes_count,
	       (SELECT COUNT(*) FROM comments c WHERE c.target_type = 'post' AND c.target_id = p.id) AS comments_count,
	       EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1) AS is_liked
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

// Create inserts a new post
func (r *PostPostgres) Create(ctx context.Context, p *entity.Post) error {
	query := `
		INSERT INTO posts (id, user_id, content, category, hashtags, topics, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Author.ID,
		p.Content,
		string(p.Category),
		nonNil(p.Hashtags),
		nonNil(p.Topics),
		nonNil(p.Images),
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	return nil
}

// Update replaces the editable fields of a post
func (r *PostPostgres) Update(ctx context.Context, p *entity.Post) error {
	query := `
		UPDATE posts
		SET content = $2, category = $3, hashtags = $4, topics = $5, images = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Content,
		string(p.Category),
		nonNil(p.Hashtags),
		nonNil(p.Topics),
		nonNil(p.Images),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrPostNotFound
	}
	return nil
}

// Delete removes a post. Its comments stay in storage, unreachable from the feed.
func (r *PostPostgres) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrPostNotFound
	}
	return nil
}

// GetByID retrieves a post as seen by viewerID
func (r *PostPostgres) GetByID(ctx context.Context, id, viewerID string) (*entity.Post, error) {
	row := r.pool.QueryRow(ctx, selectPost+" WHERE p.id = $2", viewerID, id)

	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning post: %w", err)
	}
	return p, nil
}

// Exists reports whether a post exists
func (r *PostPostgres) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)", id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking post: %w", err)
	}
	return ok, nil
}

// List returns one page of posts and the total number of matches
func (r *PostPostgres) List(ctx context.Context, opts ListOptions) ([]entity.Post, int, error) {
	where, args := buildWhere(opts.Filter, []any{opts.ViewerID})

	var total int
	countWhere, countArgs := buildWhere(opts.Filter, []any{})
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM posts p JOIN users u ON u.id = p.user_id"+countWhere, countArgs...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting posts: %w", err)
	}

	order := " ORDER BY p.created_at DESC, p.id"
	if opts.Filter.Trending() {
		order = ` ORDER BY (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
			+ 2 * (SELECT COUNT(*) FROM comments c WHERE c.target_type = 'post' AND c.target_id = p.id) DESC,
			p.created_at DESC, p.id`
	}

	args = append(args, opts.Limit, opts.Offset)
	query := selectPost + where + order +
		" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	posts := []entity.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating posts: %w", err)
	}
	return posts, total, nil
}

// buildWhere renders the filter as SQL, numbering placeholders after the given args
func buildWhere(f entity.FeedFilter, args []any) (string, []any) {
	var conds []string
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Category != "" && f.Category != entity.CategoryAll && f.Category != entity.CategoryTrending {
		conds = append(conds, "p.category = "+next(string(f.Category)))
	}

	if len(f.Hashtags) > 0 {
		patterns := make([]string, 0, len(f.Hashtags))
		for _, h := range f.Hashtags {
			h = strings.ToLower(strings.TrimLeft(strings.TrimSpace(h), "#"))
			if h != "" {
				patterns = append(patterns, "%"+escapeLike(h)+"%")
			}
		}
		if len(patterns) > 0 {
			conds = append(conds, "EXISTS (SELECT 1 FROM unnest(p.hashtags) h WHERE lower(h) LIKE ANY ("+next(patterns)+"))")
		}
	}

	if len(f.Topics) > 0 {
		conds = append(conds, "p.topics && "+next(f.Topics))
	}

	if q := strings.TrimSpace(f.Search); q != "" {
		ph := next("%" + escapeLike(strings.ToLower(q)) + "%")
		conds = append(conds, "(lower(p.content) LIKE "+ph+
			" OR lower(trim(u.first_name || ' ' || u.last_name)) LIKE "+ph+
			" OR lower(u.username) LIKE "+ph+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ToggleLike likes or unlikes a post and returns the resulting state
func (r *PostPostgres) ToggleLike(ctx context.Context, postID, userID string) (*entity.LikeResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked string
	err = tx.QueryRow(ctx, "SELECT id FROM posts WHERE id = $1 FOR UPDATE", postID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("locking post: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2", postID, userID)
	if err != nil {
		return nil, fmt.Errorf("deleting like: %w", err)
	}
	liked := false
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, "INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)", postID, userID); err != nil {
			return nil, fmt.Errorf("inserting like: %w", err)
		}
		liked = true
	}

	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM post_likes WHERE post_id = $1", postID).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing like: %w", err)
	}
	return &entity.LikeResult{IsLiked: liked, LikesCount: count}, nil
}

// IncrementShare bumps the share counter and returns its new value
func (r *PostPostgres) IncrementShare(ctx context.Context, postID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"UPDATE posts SET share_count = share_count + 1 WHERE id = $1 RETURNING share_count", postID,
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, entity.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing share count: %w", err)
	}
	return count, nil
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	var p entity.Post
	var category, role string
	var u userentity.User

	err := row.Scan(
		&p.ID,
		&p.Content,
		&category,
		&p.Hashtags,
		&p.Topics,
		&p.Images,
		&p.ShareCount,
		&p.CreatedAt,
		&p.UpdatedAt,
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Avatar,
		&role,
		&u.CompanyName,
		&p.LikesCount,
		&p.CommentsCount,
		&p.IsLiked,
	)
	if err != nil {
		return nil, err
	}

	u.Role = userentity.Role(role)
	p.Category = entity.Category(category)
	p.Author = entity.Author{
		ID:     u.ID,
		Name:   u.DisplayName(),
		Avatar: u.Avatar,
		Role:   role,
		Title:  u.Title(),
	}
	return &p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
