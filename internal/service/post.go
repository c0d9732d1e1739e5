package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"sociable/internal/model"
	"sociable/internal/repository"
	"sociable/internal/schedule"
)

// PostService handles posts, tags, likes, and deferred publication.
type PostService struct {
	postRepo     repository.PostRepository
	profileRepo  repository.ProfileRepository
	scheduler    schedule.Scheduler
	mediaService *MediaService
}

func NewPostService(
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
	scheduler schedule.Scheduler,
	mediaService *MediaService,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		profileRepo:  profileRepo,
		scheduler:    scheduler,
		mediaService: mediaService,
	}
}

// Create makes a new post for the caller's profile. A post with no
// scheduled_at is published immediately; one scheduled in the future stays
// unpublished until the worker flips it.
func (s *PostService) Create(ctx context.Context, accountID int64, req *model.CreatePostRequest) (*model.Post, error) {
	author, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrPostContentMissing
	}

	if req.ScheduledAt != nil && !req.ScheduledAt.After(time.Now()) {
		return nil, model.ErrScheduleNotFuture
	}

	post := &model.Post{
		AuthorID:    author.ID,
		Content:     content,
		ImageURL:    req.ImageURL,
		ImageKey:    req.ImageKey,
		ScheduledAt: req.ScheduledAt,
		IsPublished: req.ScheduledAt == nil,
	}

	if err := s.postRepo.Create(ctx, post, req.Tags); err != nil {
		return nil, err
	}

	if post.ScheduledAt != nil {
		if err := s.scheduler.Schedule(ctx, post.ID, *post.ScheduledAt); err != nil {
			// The post row exists; the worker just won't see it until the
			// entry is re-queued. Surface in logs rather than failing the
			// request.
			log.Printf("[Post] Failed to enqueue scheduled post=%d: %v", post.ID, err)
		}
	}

	post.Author = &model.ProfileSummary{
		ID:       author.ID,
		Nickname: author.Nickname,
		PhotoURL: author.PhotoURL,
	}

	log.Printf("[Post] Created post=%d author=%d published=%t", post.ID, author.ID, post.IsPublished)
	return post, nil
}

// Get returns a single post. Unpublished posts are visible only to their
// author; everyone else sees not-found rather than a hint that the post
// exists.
func (s *PostService) Get(ctx context.Context, accountID, postID int64) (*model.Post, error) {
	viewer, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.IsPublished && post.AuthorID != viewer.ID {
		return nil, model.ErrPostNotFound
	}

	return post, nil
}

// ListFeed returns the caller's feed: published posts by themselves and by
// profiles they follow, newest first, optionally filtered by tag.
func (s *PostService) ListFeed(ctx context.Context, accountID int64, tag *string) ([]model.Post, error) {
	viewer, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListFeed(ctx, viewer.ID, tag)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

// ListLiked returns published posts the caller has liked.
func (s *PostService) ListLiked(ctx context.Context, accountID int64) ([]model.Post, error) {
	viewer, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListLiked(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

// Update applies partial changes to a post. Only the author may update.
// Changing scheduled_at on an unpublished post re-queues it; clearing it
// publishes immediately.
func (s *PostService) Update(ctx context.Context, accountID, postID int64, req *model.UpdatePostRequest) (*model.Post, error) {
	post, err := s.ownedPost(ctx, accountID, postID)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, model.ErrPostContentMissing
		}
		post.Content = content
	}

	if req.ScheduledAt != nil && !post.IsPublished {
		if !req.ScheduledAt.After(time.Now()) {
			return nil, model.ErrScheduleNotFuture
		}
		post.ScheduledAt = req.ScheduledAt
	}

	if err := s.postRepo.Update(ctx, post, req.Tags); err != nil {
		return nil, err
	}

	if req.ScheduledAt != nil && !post.IsPublished {
		if err := s.scheduler.Schedule(ctx, post.ID, *post.ScheduledAt); err != nil {
			log.Printf("[Post] Failed to re-enqueue scheduled post=%d: %v", post.ID, err)
		}
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// Delete removes a post. Only the author may delete. A pending schedule
// entry is cancelled so the worker never sees a dangling ID.
func (s *PostService) Delete(ctx context.Context, accountID, postID int64) error {
	post, err := s.ownedPost(ctx, accountID, postID)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}

	if !post.IsPublished && post.ScheduledAt != nil {
		if err := s.scheduler.Cancel(ctx, post.ID); err != nil {
			log.Printf("[Post] Failed to cancel schedule for deleted post=%d: %v", post.ID, err)
		}
	}

	if post.ImageKey != nil {
		if err := s.mediaService.DeleteObject(ctx, *post.ImageKey); err != nil {
			log.Printf("[Post] Failed to delete image key=%s: %v", *post.ImageKey, err)
		}
	}

	log.Printf("[Post] Deleted post=%d author=%d", postID, post.AuthorID)
	return nil
}

// ToggleLike likes the post if the caller hasn't liked it, or removes the
// like if they have. Returns true when the result is a like.
func (s *PostService) ToggleLike(ctx context.Context, accountID, postID int64) (bool, error) {
	viewer, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return false, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if !post.IsPublished && post.AuthorID != viewer.ID {
		return false, model.ErrPostNotFound
	}

	err = s.postRepo.Like(ctx, postID, viewer.ID)
	if err == nil {
		return true, nil
	}
	if err != model.ErrAlreadyLiked {
		return false, err
	}

	if err := s.postRepo.Unlike(ctx, postID, viewer.ID); err != nil {
		return false, err
	}
	return false, nil
}

// ListTags returns every known tag.
func (s *PostService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.postRepo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}

// ownedPost loads a post and verifies the caller's profile authored it.
func (s *PostService) ownedPost(ctx context.Context, accountID, postID int64) (*model.Post, error) {
	actor, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, fmt.Errorf("post %d: %w", postID, model.ErrNotPostAuthor)
	}
	return post, nil
}
