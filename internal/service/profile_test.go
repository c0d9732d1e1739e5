package service

import (
	"context"
	"errors"
	"testing"

	"sociable/internal/model"
)

type mockProfileRepository struct {
	createFn         func(ctx context.Context, p *model.Profile) error
	getByIDFn        func(ctx context.Context, id int64) (*model.Profile, error)
	getByAccountIDFn func(ctx context.Context, accountID int64) (*model.Profile, error)
	updateFn         func(ctx context.Context, p *model.Profile) error
	followFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	unfollowFn       func(ctx context.Context, followerID, followeeID int64) error

	createCalls int
	followCalls int
}

func (m *mockProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	p.ID = 1
	return nil
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) GetByAccountID(ctx context.Context, accountID int64) (*model.Profile, error) {
	if m.getByAccountIDFn != nil {
		return m.getByAccountIDFn(ctx, accountID)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) Update(ctx context.Context, p *model.Profile) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockProfileRepository) UpdatePhoto(ctx context.Context, id int64, photoURL, photoKey string) error {
	return nil
}

func (m *mockProfileRepository) Delete(ctx context.Context, id int64) error {
	return nil
}

func (m *mockProfileRepository) List(ctx context.Context, filter model.ProfileFilter) ([]model.ProfileSummary, error) {
	return nil, nil
}

func (m *mockProfileRepository) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	m.followCalls++
	if m.followFn != nil {
		return m.followFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockProfileRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if m.unfollowFn != nil {
		return m.unfollowFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockProfileRepository) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return false, nil
}

func (m *mockProfileRepository) GetFollowing(ctx context.Context, profileID int64) ([]model.ProfileSummary, error) {
	return nil, nil
}

func (m *mockProfileRepository) GetFollowers(ctx context.Context, profileID int64) ([]model.ProfileSummary, error) {
	return nil, nil
}

// ownProfile wires GetByAccountID to return a fixed profile for the caller.
func ownProfile(id, accountID int64) func(ctx context.Context, aid int64) (*model.Profile, error) {
	return func(ctx context.Context, aid int64) (*model.Profile, error) {
		if aid == accountID {
			return &model.Profile{ID: id, AccountID: accountID, Nickname: "caller"}, nil
		}
		return nil, model.ErrProfileNotFound
	}
}

func TestProfileService_Create_SecondProfileConflicts(t *testing.T) {
	// The unique constraint surfaces as ErrProfileExists and the first
	// profile is left untouched.
	mockRepo := &mockProfileRepository{
		createFn: func(ctx context.Context, p *model.Profile) error {
			return model.ErrProfileExists
		},
	}
	svc := NewProfileService(mockRepo, nil)

	_, err := svc.Create(context.Background(), 1, &model.CreateProfileRequest{Nickname: "second"})

	if !errors.Is(err, model.ErrProfileExists) {
		t.Errorf("expected ErrProfileExists, got: %v", err)
	}
}

func TestProfileService_Create_RequiresNickname(t *testing.T) {
	mockRepo := &mockProfileRepository{}
	svc := NewProfileService(mockRepo, nil)

	_, err := svc.Create(context.Background(), 1, &model.CreateProfileRequest{})

	if !errors.Is(err, model.ErrNicknameMissing) {
		t.Errorf("expected ErrNicknameMissing, got: %v", err)
	}
	if mockRepo.createCalls != 0 {
		t.Error("Create should not reach the repository without a nickname")
	}
}

func TestProfileService_Follow_SelfRejected(t *testing.T) {
	mockRepo := &mockProfileRepository{
		getByAccountIDFn: ownProfile(10, 1),
	}
	svc := NewProfileService(mockRepo, nil)

	err := svc.Follow(context.Background(), 1, 10)

	if !errors.Is(err, model.ErrCannotFollowSelf) {
		t.Errorf("expected ErrCannotFollowSelf, got: %v", err)
	}
	if mockRepo.followCalls != 0 {
		t.Error("Follow should not reach the repository for a self-follow")
	}
}

func TestProfileService_Follow_DuplicateConflicts(t *testing.T) {
	mockRepo := &mockProfileRepository{
		getByAccountIDFn: ownProfile(10, 1),
		getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
			return &model.Profile{ID: id, AccountID: 2, Nickname: "target"}, nil
		},
		followFn: func(ctx context.Context, followerID, followeeID int64) (bool, error) {
			return false, nil // edge already present
		},
	}
	svc := NewProfileService(mockRepo, nil)

	err := svc.Follow(context.Background(), 1, 20)

	if !errors.Is(err, model.ErrAlreadyFollowing) {
		t.Errorf("expected ErrAlreadyFollowing, got: %v", err)
	}
}

func TestProfileService_FollowUnfollow_RoundTrip(t *testing.T) {
	edges := map[[2]int64]bool{}
	mockRepo := &mockProfileRepository{
		getByAccountIDFn: ownProfile(10, 1),
		getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
			return &model.Profile{ID: id, AccountID: 2, Nickname: "target"}, nil
		},
		followFn: func(ctx context.Context, followerID, followeeID int64) (bool, error) {
			key := [2]int64{followerID, followeeID}
			if edges[key] {
				return false, nil
			}
			edges[key] = true
			return true, nil
		},
		unfollowFn: func(ctx context.Context, followerID, followeeID int64) error {
			key := [2]int64{followerID, followeeID}
			if !edges[key] {
				return model.ErrNotFollowing
			}
			delete(edges, key)
			return nil
		},
	}
	svc := NewProfileService(mockRepo, nil)
	ctx := context.Background()

	if err := svc.Follow(ctx, 1, 20); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := svc.Unfollow(ctx, 1, 20); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	// A second unfollow has no edge left to remove
	if err := svc.Unfollow(ctx, 1, 20); !errors.Is(err, model.ErrNotFollowing) {
		t.Errorf("expected ErrNotFollowing, got: %v", err)
	}
}

func TestProfileService_Update_NonOwnerForbidden(t *testing.T) {
	mockRepo := &mockProfileRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Profile, error) {
			return &model.Profile{ID: id, AccountID: 99, Nickname: "other"}, nil
		},
	}
	svc := NewProfileService(mockRepo, nil)

	nickname := "hijacked"
	_, err := svc.Update(context.Background(), 1, 10, &model.UpdateProfileRequest{Nickname: &nickname})

	if !errors.Is(err, model.ErrNotProfileOwner) {
		t.Errorf("expected ErrNotProfileOwner, got: %v", err)
	}
}
