package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sociable/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postRow carries a post plus the joined author columns. Like and comment
// counts are computed at read time, never stored on the posts row.
type postRow struct {
	model.Post
	AuthorNickname string  `db:"author_nickname"`
	AuthorPhotoURL *string `db:"author_photo_url"`
}

const postSelectColumns = `
	p.id, p.author_id, p.content, p.image_url, p.image_key,
	p.scheduled_at, p.is_published, p.created_at, p.updated_at,
	pr.nickname AS author_nickname, pr.photo_url AS author_photo_url,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
	(SELECT COUNT(*) FROM post_comments pc WHERE pc.post_id = p.id) AS comment_count
`

// Create inserts a new post and attaches its tags in a transaction.
func (r *postRepository) Create(ctx context.Context, post *model.Post, tagNames []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO posts (author_id, content, image_url, image_key, scheduled_at, is_published)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, query,
		post.AuthorID, post.Content, post.ImageURL, post.ImageKey,
		post.ScheduledAt, post.IsPublished,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	if err := attachTags(ctx, tx, post.ID, tagNames); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	post.Tags = normalizeTags(tagNames)
	return nil
}

// GetByID retrieves a single post with author, tags and counts.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT ` + postSelectColumns + `
		FROM posts p
		JOIN profiles pr ON pr.id = p.author_id
		WHERE p.id = $1
	`
	var row postRow
	err := r.db.GetContext(ctx, &row, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	post := row.toPost()
	tags, err := r.getPostTags(ctx, []int64{postID})
	if err != nil {
		return nil, err
	}
	post.Tags = tags[postID]
	if post.Tags == nil {
		post.Tags = []string{}
	}

	return post, nil
}

// Update persists content, schedule and publication changes. A non-nil
// tagNames replaces the post's tag set wholesale.
func (r *postRepository) Update(ctx context.Context, post *model.Post, tagNames *[]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE posts
		SET content = $1, scheduled_at = $2, is_published = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	err = tx.QueryRowxContext(ctx, query,
		post.Content, post.ScheduledAt, post.IsPublished, post.ID,
	).Scan(&post.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if tagNames != nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, post.ID)
		if err != nil {
			return fmt.Errorf("clear post tags: %w", err)
		}
		if err := attachTags(ctx, tx, post.ID, *tagNames); err != nil {
			return err
		}
		post.Tags = normalizeTags(*tagNames)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a post. Tags themselves survive; only the attachments and
// dependent comments/likes cascade.
func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}

	return nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// ListFeed returns published posts authored by the viewer or any profile the
// viewer follows, newest first. The feed is computed at read time from the
// follow edges; nothing is materialized. tag filters by tag name,
// case-insensitive exact match.
func (r *postRepository) ListFeed(ctx context.Context, viewerID int64, tag *string) ([]model.Post, error) {
	query := `
		SELECT ` + postSelectColumns + `
		FROM posts p
		JOIN profiles pr ON pr.id = p.author_id
		WHERE p.is_published
		  AND (p.author_id = $1 OR p.author_id IN (
		      SELECT followee_id FROM profile_follows WHERE follower_id = $1))
		  AND ($2::text IS NULL OR EXISTS (
		      SELECT 1 FROM post_tags pt
		      JOIN tags t ON t.id = pt.tag_id
		      WHERE pt.post_id = p.id AND LOWER(t.name) = LOWER($2)))
		ORDER BY p.created_at DESC, p.id DESC
	`

	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, query, viewerID, tag)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}

	return r.hydratePosts(ctx, rows)
}

// ListLiked returns published posts the profile has liked, newest first.
func (r *postRepository) ListLiked(ctx context.Context, profileID int64) ([]model.Post, error) {
	query := `
		SELECT ` + postSelectColumns + `
		FROM post_likes l
		JOIN posts p ON p.id = l.post_id
		JOIN profiles pr ON pr.id = p.author_id
		WHERE l.author_id = $1 AND p.is_published
		ORDER BY p.created_at DESC, p.id DESC
	`

	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list liked posts: %w", err)
	}

	return r.hydratePosts(ctx, rows)
}

// Publish flips is_published on a scheduled post. Called by the
// deferred-publication worker when the scheduled time passes.
func (r *postRepository) Publish(ctx context.Context, postID int64) error {
	query := `UPDATE posts SET is_published = TRUE, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("publish post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}

	return nil
}

// Like inserts a like record. Returns ErrAlreadyLiked on a duplicate.
func (r *postRepository) Like(ctx context.Context, postID, authorID int64) error {
	query := `INSERT INTO post_likes (post_id, author_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, postID, authorID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrAlreadyLiked
		}
		return fmt.Errorf("insert post like: %w", err)
	}
	return nil
}

// Unlike deletes a like record. Returns ErrNotLiked if no edge exists.
func (r *postRepository) Unlike(ctx context.Context, postID, authorID int64) error {
	query := `DELETE FROM post_likes WHERE post_id = $1 AND author_id = $2`
	result, err := r.db.ExecContext(ctx, query, postID, authorID)
	if err != nil {
		return fmt.Errorf("delete post like: %w", err)
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

// ListTags returns every known tag ordered by name.
func (r *postRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.SelectContext(ctx, &tags, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (row *postRow) toPost() *model.Post {
	post := row.Post
	post.Author = &model.ProfileSummary{
		ID:       post.AuthorID,
		Nickname: row.AuthorNickname,
		PhotoURL: row.AuthorPhotoURL,
	}
	return &post
}

// hydratePosts converts rows to posts and fills their tag lists in one query.
func (r *postRepository) hydratePosts(ctx context.Context, rows []postRow) ([]model.Post, error) {
	posts := make([]model.Post, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for i := range rows {
		posts = append(posts, *rows[i].toPost())
		ids = append(ids, rows[i].ID)
	}

	tagMap, err := r.getPostTags(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Tags = tagMap[posts[i].ID]
		if posts[i].Tags == nil {
			posts[i].Tags = []string{}
		}
	}

	return posts, nil
}

// getPostTags fetches tag names for multiple posts in one query.
func (r *postRepository) getPostTags(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
	if len(postIDs) == 0 {
		return map[int64][]string{}, nil
	}

	query := `
		SELECT pt.post_id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY pt.post_id, t.name
	`
	type row struct {
		PostID int64  `db:"post_id"`
		Name   string `db:"name"`
	}
	var tagRows []row
	err := r.db.SelectContext(ctx, &tagRows, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get post tags: %w", err)
	}

	result := make(map[int64][]string)
	for _, tr := range tagRows {
		result[tr.PostID] = append(result[tr.PostID], tr.Name)
	}
	return result, nil
}

// attachTags get-or-creates each tag by name and links it to the post.
// Duplicate names in the input collapse to a single attachment.
func attachTags(ctx context.Context, tx *sqlx.Tx, postID int64, tagNames []string) error {
	for _, name := range normalizeTags(tagNames) {
		var tagID int64
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT (post_id, tag_id) DO NOTHING
		`, postID, tagID)
		if err != nil {
			return fmt.Errorf("attach tag %q: %w", name, err)
		}
	}
	return nil
}

// normalizeTags drops empty names and duplicates while keeping input order.
func normalizeTags(tagNames []string) []string {
	seen := make(map[string]struct{}, len(tagNames))
	out := make([]string, 0, len(tagNames))
	for _, name := range tagNames {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
