package model

import (
	"errors"
	"time"
)

// Post represents a profile's post. A post is visible in feeds only once
// is_published is set, either immediately at creation or later by the
// deferred-publication worker when scheduled_at passes.
type Post struct {
	ID          int64      `db:"id" json:"id"`
	AuthorID    int64      `db:"author_id" json:"-"`
	Content     string     `db:"content" json:"content"`
	ImageURL    *string    `db:"image_url" json:"image"`
	ImageKey    *string    `db:"image_key" json:"-"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	IsPublished bool       `db:"is_published" json:"is_published"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	// Joined/annotated fields (not columns on the posts table)
	Author       *ProfileSummary `json:"author,omitempty"`
	Tags         []string        `json:"tags"`
	LikeCount    int             `db:"like_count" json:"like_count"`
	CommentCount int             `db:"comment_count" json:"comment_count"`
}

// Tag is a unique label attached to posts.
type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CreatePostRequest is the parsed form data for creating a post.
// Image upload is resolved by the handler before the service is called.
type CreatePostRequest struct {
	Content     string
	Tags        []string
	ScheduledAt *time.Time
	ImageURL    *string
	ImageKey    *string
}

// UpdatePostRequest carries partial post updates. A non-nil Tags replaces
// the post's tag set wholesale; nil leaves it untouched.
type UpdatePostRequest struct {
	Content     *string    `json:"content"`
	Tags        *[]string  `json:"tags"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Post errors
var (
	ErrPostNotFound       = errors.New("post not found")
	ErrNotPostAuthor      = errors.New("not the author of this post")
	ErrPostContentMissing = errors.New("post content is required")
	ErrScheduleNotFuture  = errors.New("scheduled_at must be in the future")
	ErrAlreadyLiked       = errors.New("already liked")
	ErrNotLiked           = errors.New("not liked")
)
