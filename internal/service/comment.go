package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"sociable/internal/model"
	"sociable/internal/repository"
)

// CommentService handles comments and comment likes.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
	}
}

// Create adds a comment to a post by the caller's profile.
func (s *CommentService) Create(ctx context.Context, accountID int64, req *model.CreateCommentRequest) (*model.Comment, error) {
	author, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrCommentContentMissing
	}

	exists, err := s.postRepo.Exists(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comment := &model.Comment{
		PostID:   req.PostID,
		AuthorID: author.ID,
		Content:  content,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	comment.Author = &model.ProfileSummary{
		ID:       author.ID,
		Nickname: author.Nickname,
		PhotoURL: author.PhotoURL,
	}

	log.Printf("[Comment] Created comment=%d post=%d author=%d", comment.ID, comment.PostID, author.ID)
	return comment, nil
}

// Get returns a single comment.
func (s *CommentService) Get(ctx context.Context, commentID int64) (*model.Comment, error) {
	return s.commentRepo.GetByID(ctx, commentID)
}

// List returns comments newest first, optionally restricted to one post.
func (s *CommentService) List(ctx context.Context, postID *int64) ([]model.Comment, error) {
	comments, err := s.commentRepo.List(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

// Update replaces a comment's content. Only the author may update.
func (s *CommentService) Update(ctx context.Context, accountID, commentID int64, req *model.UpdateCommentRequest) (*model.Comment, error) {
	if _, err := s.ownedComment(ctx, accountID, commentID); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrCommentContentMissing
	}

	return s.commentRepo.Update(ctx, commentID, content)
}

// Delete removes a comment. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, accountID, commentID int64) error {
	if _, err := s.ownedComment(ctx, accountID, commentID); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// ToggleLike likes the comment if the caller hasn't liked it, or removes
// the like if they have. Returns true when the result is a like.
func (s *CommentService) ToggleLike(ctx context.Context, accountID, commentID int64) (bool, error) {
	viewer, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return false, err
	}

	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return false, err
	}

	err = s.commentRepo.Like(ctx, commentID, viewer.ID)
	if err == nil {
		return true, nil
	}
	if err != model.ErrAlreadyLiked {
		return false, err
	}

	if err := s.commentRepo.Unlike(ctx, commentID, viewer.ID); err != nil {
		return false, err
	}
	return false, nil
}

// ownedComment loads a comment and verifies the caller's profile authored it.
func (s *CommentService) ownedComment(ctx context.Context, accountID, commentID int64) (*model.Comment, error) {
	actor, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.ID {
		return nil, fmt.Errorf("comment %d: %w", commentID, model.ErrNotCommentAuthor)
	}
	return comment, nil
}
