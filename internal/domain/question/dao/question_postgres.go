package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextstepz/community/internal/domain/question/entity"
	userentity "github.com/nextstepz/community/internal/domain/user/entity"
)

// QuestionPostgres implements question storage for PostgreSQL
type QuestionPostgres struct {
	pool *pgxpool.Pool
}

// NewQuestionPostgres creates a new PostgreSQL question repository
func NewQuestionPostgres(pool *pgxpool.Pool) *QuestionPostgres {
	return &QuestionPostgres{pool: pool}
}

const commentsOfQuestion = `(SELECT COUNT(*) FROM comments c WHERE c.target_type = 'question' AND c.target_id = q.id)`

const selectQuestion = `
	SELECT q.id, q.title, q.content, q.tags, q.view_count, COALESCE(q.accepted_comment_id, ''), q.created_at,
	       u.id, u.username, u.first_name, u.last_name, u.avatar, u.role, u.company_name,
	       (SELECT COUNT(*) FROM question_likes l WHERE l.question_id = q.id) AS likes_count,
	       ` + commentsOfQuestion + ` AS comments_count,
	       EXISTS (SELECT 1 FROM question_likes l WHERE l.question_id = q.id AND l.user_id = $1) AS is_liked
	FROM questions q
	JOIN users u ON u.id = q.user_id
`

// Create inserts a new question
func (r *QuestionPostgres) Create(ctx context.Context, q *entity.Question) error {
	query := `
		INSERT INTO questions (id, user_id, title, content, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := r.pool.Exec(ctx, query, q.ID, q.User.ID, q.Title, q.Content, tags, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting question: %w", err)
	}
	return nil
}

// GetByID retrieves a question as seen by viewerID
func (r *QuestionPostgres) GetByID(ctx context.Context, id, viewerID string) (*entity.Question, error) {
	q, err := scanQuestion(r.pool.QueryRow(ctx, selectQuestion+" WHERE q.id = $2", viewerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning question: %w", err)
	}
	return q, nil
}

// Exists reports whether a question exists
func (r *QuestionPostgres) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1)", id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking question: %w", err)
	}
	return ok, nil
}

// List returns questions newest first
func (r *QuestionPostgres) List(ctx context.Context, viewerID string, limit, offset int) ([]entity.Question, error) {
	return r.query(ctx, selectQuestion+" ORDER BY q.created_at DESC, q.id LIMIT $2 OFFSET $3", viewerID, limit, offset)
}

// Featured returns the most liked questions
func (r *QuestionPostgres) Featured(ctx context.Context, limit int) ([]entity.Question, error) {
	return r.query(ctx, selectQuestion+" ORDER BY likes_count DESC, q.created_at DESC LIMIT $2", "", limit)
}

func (r *QuestionPostgres) query(ctx context.Context, query string, args ...any) ([]entity.Question, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	out := []entity.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating questions: %w", err)
	}
	return out, nil
}

// TopExperts ranks users by the answers they wrote in question threads
func (r *QuestionPostgres) TopExperts(ctx context.Context, limit int) ([]entity.TopExpert, error) {
	query := `
		SELECT u.id, u.username, u.first_name, u.last_name, u.avatar, u.role, u.company_name, COUNT(c.id) AS answers
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.target_type = 'question'
		GROUP BY u.id
		ORDER BY answers DESC, u.created_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying experts: %w", err)
	}
	defer rows.Close()

	out := []entity.TopExpert{}
	for rows.Next() {
		var u userentity.User
		var role string
		var e entity.TopExpert
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Avatar, &role, &u.CompanyName, &e.QuestionCount); err != nil {
			return nil, fmt.Errorf("scanning expert: %w", err)
		}
		u.Role = userentity.Role(role)
		e.ID = u.ID
		e.Name = u.DisplayName()
		e.Avatar = u.Avatar
		e.Role = role
		e.Title = u.Title()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating experts: %w", err)
	}
	return out, nil
}

// Counts returns the raw Q&A numbers; answers are counted from since
func (r *QuestionPostgres) Counts(ctx context.Context, since time.Time) (entity.Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM questions q WHERE ` + commentsOfQuestion + ` = 0),
			(SELECT COUNT(*) FROM questions WHERE accepted_comment_id IS NOT NULL),
			(SELECT COUNT(*) FROM comments WHERE target_type = 'question' AND created_at >= $1)
	`

	var c entity.Counts
	if err := r.pool.QueryRow(ctx, query, since).Scan(&c.Total, &c.Unanswered, &c.Resolved, &c.Answers); err != nil {
		return entity.Counts{}, fmt.Errorf("counting questions: %w", err)
	}
	return c, nil
}

// ToggleLike likes or unlikes a question and returns the resulting state
func (r *QuestionPostgres) ToggleLike(ctx context.Context, questionID, userID string) (*entity.LikeResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked string
	err = tx.QueryRow(ctx, "SELECT id FROM questions WHERE id = $1 FOR UPDATE", questionID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("locking question: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM question_likes WHERE question_id = $1 AND user_id = $2", questionID, userID)
	if err != nil {
		return nil, fmt.Errorf("deleting like: %w", err)
	}
	liked := false
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, "INSERT INTO question_likes (question_id, user_id) VALUES ($1, $2)", questionID, userID); err != nil {
			return nil, fmt.Errorf("inserting like: %w", err)
		}
		liked = true
	}

	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM question_likes WHERE question_id = $1", questionID).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing like: %w", err)
	}
	return &entity.LikeResult{IsLiked: liked, LikesCount: count}, nil
}

// IncrementViews bumps the view counter and returns its new value
func (r *QuestionPostgres) IncrementViews(ctx context.Context, questionID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"UPDATE questions SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count", questionID,
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, entity.ErrQuestionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing view count: %w", err)
	}
	return count, nil
}

// AcceptAnswer marks a root or reply comment of the question's thread as accepted
func (r *QuestionPostgres) AcceptAnswer(ctx context.Context, questionID, commentID string) error {
	query := `
		UPDATE questions q SET accepted_comment_id = $2
		WHERE q.id = $1 AND EXISTS (
			SELECT 1 FROM comments c
			WHERE c.id = $2 AND c.target_type = 'question' AND c.target_id = q.id
		)
	`

	tag, err := r.pool.Exec(ctx, query, questionID, commentID)
	if err != nil {
		return fmt.Errorf("accepting answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrAnswerNotFound
	}
	return nil
}

func scanQuestion(row pgx.Row) (*entity.Question, error) {
	var q entity.Question
	var u userentity.User
	var role string

	err := row.Scan(
		&q.ID,
		&q.Title,
		&q.Content,
		&q.Tags,
		&q.ViewCount,
		&q.AcceptedCommentID,
		&q.CreatedAt,
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Avatar,
		&role,
		&u.CompanyName,
		&q.LikesCount,
		&q.CommentsCount,
		&q.IsLiked,
	)
	if err != nil {
		return nil, err
	}

	q.IsAnswered = q.CommentsCount > 0
	q.User = entity.Author{
		ID:          u.ID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Avatar:      u.Avatar,
		Role:        role,
		CompanyName: u.CompanyName,
	}
	return &q, nil
}
