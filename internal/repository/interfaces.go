package repository

import (
	"context"
	"time"

	"sociable/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, account *model.Account) error
	UpdatePassword(ctx context.Context, id int64, passwordHashed string) error
	Delete(ctx context.Context, id int64) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForAccount(ctx context.Context, accountID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id int64) (*model.Profile, error)
	GetByAccountID(ctx context.Context, accountID int64) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
	UpdatePhoto(ctx context.Context, id int64, photoURL, photoKey string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter model.ProfileFilter) ([]model.ProfileSummary, error)

	// Follow edge operations. The edge set is owned exclusively by this
	// store; followers are always a reverse lookup, never stored twice.
	Follow(ctx context.Context, followerID, followeeID int64) (inserted bool, err error)
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowing(ctx context.Context, profileID int64) ([]model.ProfileSummary, error)
	GetFollowers(ctx context.Context, profileID int64) ([]model.ProfileSummary, error)
}

type PostRepository interface {
	// Create inserts the post and attaches tags (get-or-created by exact
	// name) in a single transaction.
	Create(ctx context.Context, post *model.Post, tagNames []string) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// Update persists content/scheduled_at/is_published changes; a non-nil
	// tagNames replaces the post's tag set wholesale.
	Update(ctx context.Context, post *model.Post, tagNames *[]string) error
	Delete(ctx context.Context, postID int64) error
	Exists(ctx context.Context, postID int64) (bool, error)

	// ListFeed returns published posts authored by the viewer or any
	// profile the viewer follows, newest first, annotated with live like
	// and comment counts. tag filters by tag name, case-insensitive exact.
	ListFeed(ctx context.Context, viewerID int64, tag *string) ([]model.Post, error)
	// ListLiked returns published posts the profile has liked, newest first.
	ListLiked(ctx context.Context, profileID int64) ([]model.Post, error)

	// Publish flips is_published; used by the deferred-publication worker.
	Publish(ctx context.Context, postID int64) error

	// Like/Unlike operate on the post_likes table. Like returns
	// model.ErrAlreadyLiked on a duplicate, Unlike model.ErrNotLiked when
	// no edge exists.
	Like(ctx context.Context, postID, authorID int64) error
	Unlike(ctx context.Context, postID, authorID int64) error

	ListTags(ctx context.Context) ([]model.Tag, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	Update(ctx context.Context, commentID int64, content string) (*model.Comment, error)
	Delete(ctx context.Context, commentID int64) error
	// List returns comments newest first; a non-nil postID restricts to
	// one post.
	List(ctx context.Context, postID *int64) ([]model.Comment, error)

	// Comment-target likes, same union rules as post likes.
	Like(ctx context.Context, commentID, authorID int64) error
	Unlike(ctx context.Context, commentID, authorID int64) error
}

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	GetByID(ctx context.Context, messageID int64) (*model.Message, error)
	// ListForProfile returns messages where the profile is sender or
	// recipient, newest first.
	ListForProfile(ctx context.Context, profileID int64) ([]model.Message, error)
}
