package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sociable/internal/model"
)

type mockPostRepository struct {
	createFn  func(ctx context.Context, post *model.Post, tagNames []string) error
	getByIDFn func(ctx context.Context, postID int64) (*model.Post, error)
	existsFn  func(ctx context.Context, postID int64) (bool, error)
	likeFn    func(ctx context.Context, postID, authorID int64) error
	unlikeFn  func(ctx context.Context, postID, authorID int64) error

	createCalls []createdPost
	unlikeCalls int
}

type createdPost struct {
	Post *model.Post
	Tags []string
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post, tagNames []string) error {
	m.createCalls = append(m.createCalls, createdPost{Post: post, Tags: tagNames})
	if m.createFn != nil {
		return m.createFn(ctx, post, tagNames)
	}
	post.ID = 1
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Update(ctx context.Context, post *model.Post, tagNames *[]string) error {
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID int64) error {
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return true, nil
}

func (m *mockPostRepository) ListFeed(ctx context.Context, viewerID int64, tag *string) ([]model.Post, error) {
	return nil, nil
}

func (m *mockPostRepository) ListLiked(ctx context.Context, profileID int64) ([]model.Post, error) {
	return nil, nil
}

func (m *mockPostRepository) Publish(ctx context.Context, postID int64) error {
	return nil
}

func (m *mockPostRepository) Like(ctx context.Context, postID, authorID int64) error {
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, authorID)
	}
	return nil
}

func (m *mockPostRepository) Unlike(ctx context.Context, postID, authorID int64) error {
	m.unlikeCalls++
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, authorID)
	}
	return nil
}

func (m *mockPostRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	return nil, nil
}

type mockScheduler struct {
	scheduleCalls []scheduledEntry
	cancelCalls   []int64
}

type scheduledEntry struct {
	PostID int64
	At     time.Time
}

func (m *mockScheduler) Schedule(ctx context.Context, postID int64, at time.Time) error {
	m.scheduleCalls = append(m.scheduleCalls, scheduledEntry{PostID: postID, At: at})
	return nil
}

func (m *mockScheduler) Cancel(ctx context.Context, postID int64) error {
	m.cancelCalls = append(m.cancelCalls, postID)
	return nil
}

func newTestPostService(postRepo *mockPostRepository, profileRepo *mockProfileRepository, scheduler *mockScheduler) *PostService {
	return NewPostService(postRepo, profileRepo, scheduler, nil)
}

func TestPostService_Create_ImmediatePublish(t *testing.T) {
	// ARRANGE
	postRepo := &mockPostRepository{}
	profileRepo := &mockProfileRepository{getByAccountIDFn: ownProfile(10, 1)}
	scheduler := &mockScheduler{}
	svc := newTestPostService(postRepo, profileRepo, scheduler)

	// ACT
	post, err := svc.Create(context.Background(), 1, &model.CreatePostRequest{
		Content: "hello world",
		Tags:    []string{"go", "testing"},
	})

	// ASSERT
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !post.IsPublished {
		t.Error("a post without scheduled_at should be published immediately")
	}
	if len(scheduler.scheduleCalls) != 0 {
		t.Error("an immediately published post should never be queued")
	}
	if len(postRepo.createCalls) != 1 || len(postRepo.createCalls[0].Tags) != 2 {
		t.Errorf("Create should receive both tags, got %+v", postRepo.createCalls)
	}
}

func TestPostService_Create_ScheduledStaysUnpublished(t *testing.T) {
	postRepo := &mockPostRepository{}
	profileRepo := &mockProfileRepository{getByAccountIDFn: ownProfile(10, 1)}
	scheduler := &mockScheduler{}
	svc := newTestPostService(postRepo, profileRepo, scheduler)

	at := time.Now().Add(2 * time.Hour)
	post, err := svc.Create(context.Background(), 1, &model.CreatePostRequest{
		Content:     "later",
		ScheduledAt: &at,
	})

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if post.IsPublished {
		t.Error("a scheduled post must not be published at creation")
	}
	if len(scheduler.scheduleCalls) != 1 {
		t.Fatalf("Schedule called %d times, want 1", len(scheduler.scheduleCalls))
	}
	if scheduler.scheduleCalls[0].PostID != post.ID || !scheduler.scheduleCalls[0].At.Equal(at) {
		t.Errorf("queued entry = %+v, want post=%d at=%v", scheduler.scheduleCalls[0], post.ID, at)
	}
}

func TestPostService_Create_PastScheduleRejected(t *testing.T) {
	postRepo := &mockPostRepository{}
	profileRepo := &mockProfileRepository{getByAccountIDFn: ownProfile(10, 1)}
	scheduler := &mockScheduler{}
	svc := newTestPostService(postRepo, profileRepo, scheduler)

	at := time.Now().Add(-time.Minute)
	_, err := svc.Create(context.Background(), 1, &model.CreatePostRequest{
		Content:     "too late",
		ScheduledAt: &at,
	})

	if !errors.Is(err, model.ErrScheduleNotFuture) {
		t.Errorf("expected ErrScheduleNotFuture, got: %v", err)
	}
	if len(postRepo.createCalls) != 0 {
		t.Error("Create should not reach the repository with a past schedule")
	}
}

func TestPostService_Create_EmptyContentRejected(t *testing.T) {
	profileRepo := &mockProfileRepository{getByAccountIDFn: ownProfile(10, 1)}
	svc := newTestPostService(&mockPostRepository{}, profileRepo, &mockScheduler{})

	_, err := svc.Create(context.Background(), 1, &model.CreatePostRequest{Content: "   "})

	if !errors.Is(err, model.ErrPostContentMissing) {
		t.Errorf("expected ErrPostContentMissing, got: %v", err)
	}
}

func TestPostService_Get_UnpublishedHiddenFromOthers(t *testing.T) {
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: postID, AuthorID: 99, IsPublished: false}, nil
		},
	}
	profileRepo := &mockProfileRepository{getByAccountIDFn: ownProfile(10, 1)}
	svc := newTestPostService(postRepo, profileRepo, &mockScheduler{})

	// A non-author gets not-found, not forbidden; the post's existence
	// stays hidden.
	_, err := svc.Get(context.Background(), 1, 5)
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got: %v", err)
	}
}

func TestPostService_ToggleLike_Toggles(t *testing.T) {
	liked := map[int64]bool{}
	postRepo := &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			return &model.Post{ID: postID, AuthorID: 99, IsPublished: true}, nil
		},
		likeFn: func(ctx context.Context, postID, authorID int64) error {
			if liked[postID] {
				return model.ErrAlreadyLiked
			}
			liked[postID] = true
			return nil
		},
		unlikeFn: func(ctx context.Context, postID, authorID int64) error {
			if !liked[postID] {
				return model.ErrNotLiked
			}
			delete(liked, postID)
			return nil
		},
	}
	profileRepo := &mockProfileRepository{getByAccountIDFn: ownProfile(10, 1)}
	svc := newTestPostService(postRepo, profileRepo, &mockScheduler{})
	ctx := context.Background()

	nowLiked, err := svc.ToggleLike(ctx, 1, 5)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !nowLiked {
		t.Error("first toggle should like the post")
	}

	nowLiked, err = svc.ToggleLike(ctx, 1, 5)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if nowLiked {
		t.Error("second toggle should remove the like")
	}
	if postRepo.unlikeCalls != 1 {
		t.Errorf("Unlike called %d times, want 1", postRepo.unlikeCalls)
	}
}
