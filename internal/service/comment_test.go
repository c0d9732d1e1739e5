package service

import (
	"context"
	"errors"
	"testing"

	"sociable/internal/model"
)

type mockCommentRepository struct {
	createFn  func(ctx context.Context, c *model.Comment) error
	getByIDFn func(ctx context.Context, commentID int64) (*model.Comment, error)

	deleteCalls int
}

func (m *mockCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = 1
	return nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) Update(ctx context.Context, commentID int64, content string) (*model.Comment, error) {
	return &model.Comment{ID: commentID, Content: content}, nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, commentID int64) error {
	m.deleteCalls++
	return nil
}

func (m *mockCommentRepository) List(ctx context.Context, postID *int64) ([]model.Comment, error) {
	return nil, nil
}

func (m *mockCommentRepository) Like(ctx context.Context, commentID, authorID int64) error {
	return nil
}

func (m *mockCommentRepository) Unlike(ctx context.Context, commentID, authorID int64) error {
	return nil
}

func TestCommentService_Create_MissingPost(t *testing.T) {
	commentRepo := &mockCommentRepository{}
	postRepo := &mockPostRepository{}
	postRepo.existsFn = func(ctx context.Context, postID int64) (bool, error) {
		return false, nil
	}
	profileRepo := &mockProfileRepository{getByAccountIDFn: ownProfile(10, 1)}
	svc := NewCommentService(commentRepo, postRepo, profileRepo)

	_, err := svc.Create(context.Background(), 1, &model.CreateCommentRequest{
		PostID:  42,
		Content: "nice",
	})

	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got: %v", err)
	}
}

func TestCommentService_Delete_NonAuthorForbidden(t *testing.T) {
	commentRepo := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: commentID, AuthorID: 99, Content: "not yours"}, nil
		},
	}
	profileRepo := &mockProfileRepository{getByAccountIDFn: ownProfile(10, 1)}
	svc := NewCommentService(commentRepo, &mockPostRepository{}, profileRepo)

	err := svc.Delete(context.Background(), 1, 5)

	if !errors.Is(err, model.ErrNotCommentAuthor) {
		t.Errorf("expected ErrNotCommentAuthor, got: %v", err)
	}
	if commentRepo.deleteCalls != 0 {
		t.Error("Delete should not reach the repository for a non-author")
	}
}

func TestCommentService_Create_EmptyContentRejected(t *testing.T) {
	profileRepo := &mockProfileRepository{getByAccountIDFn: ownProfile(10, 1)}
	svc := NewCommentService(&mockCommentRepository{}, &mockPostRepository{}, profileRepo)

	_, err := svc.Create(context.Background(), 1, &model.CreateCommentRequest{
		PostID:  42,
		Content: "  ",
	})

	if !errors.Is(err, model.ErrCommentContentMissing) {
		t.Errorf("expected ErrCommentContentMissing, got: %v", err)
	}
}
