package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sociable/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

type commentRow struct {
	model.Comment
	AuthorNickname string  `db:"author_nickname"`
	AuthorPhotoURL *string `db:"author_photo_url"`
}

const commentSelectColumns = `
	c.id, c.post_id, c.author_id, c.content, c.created_at,
	pr.nickname AS author_nickname, pr.photo_url AS author_photo_url,
	(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS like_count
`

func (row *commentRow) toComment() *model.Comment {
	comment := row.Comment
	comment.Author = &model.ProfileSummary{
		ID:       comment.AuthorID,
		Nickname: row.AuthorNickname,
		PhotoURL: row.AuthorPhotoURL,
	}
	return &comment
}

// Create inserts a new comment.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO post_comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.PostID, c.AuthorID, c.Content).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT ` + commentSelectColumns + `
		FROM post_comments c
		JOIN profiles pr ON pr.id = c.author_id
		WHERE c.id = $1
	`
	var row commentRow
	err := r.db.GetContext(ctx, &row, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return row.toComment(), nil
}

// Update replaces the comment content and returns the fresh row.
func (r *commentRepository) Update(ctx context.Context, commentID int64, content string) (*model.Comment, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE post_comments SET content = $1 WHERE id = $2`, content, commentID)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, model.ErrCommentNotFound
	}

	return r.GetByID(ctx, commentID)
}

func (r *commentRepository) Delete(ctx context.Context, commentID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM post_comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotFound
	}

	return nil
}

// List returns comments newest first. A non-nil postID restricts the result
// to that post.
func (r *commentRepository) List(ctx context.Context, postID *int64) ([]model.Comment, error) {
	query := `
		SELECT ` + commentSelectColumns + `
		FROM post_comments c
		JOIN profiles pr ON pr.id = c.author_id
		WHERE ($1::bigint IS NULL OR c.post_id = $1)
		ORDER BY c.created_at DESC, c.id DESC
	`

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, *rows[i].toComment())
	}
	return comments, nil
}

// Like inserts a comment like. Returns ErrAlreadyLiked on a duplicate.
func (r *commentRepository) Like(ctx context.Context, commentID, authorID int64) error {
	query := `INSERT INTO comment_likes (comment_id, author_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, commentID, authorID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrAlreadyLiked
		}
		return fmt.Errorf("insert comment like: %w", err)
	}
	return nil
}

// Unlike deletes a comment like. Returns ErrNotLiked if no edge exists.
func (r *commentRepository) Unlike(ctx context.Context, commentID, authorID int64) error {
	query := `DELETE FROM comment_likes WHERE comment_id = $1 AND author_id = $2`
	result, err := r.db.ExecContext(ctx, query, commentID, authorID)
	if err != nil {
		return fmt.Errorf("delete comment like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}
