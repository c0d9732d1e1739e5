package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"

	"sociable/internal/model"
	"sociable/internal/repository"
)

// ProfileService handles profiles and the follow graph.
type ProfileService struct {
	profileRepo  repository.ProfileRepository
	mediaService *MediaService
}

func NewProfileService(profileRepo repository.ProfileRepository, mediaService *MediaService) *ProfileService {
	return &ProfileService{
		profileRepo:  profileRepo,
		mediaService: mediaService,
	}
}

// Create makes the social profile for an account. At most one profile may
// exist per account; a second attempt fails without touching the first.
func (s *ProfileService) Create(ctx context.Context, accountID int64, req *model.CreateProfileRequest) (*model.Profile, error) {
	if req.Nickname == "" {
		return nil, model.ErrNicknameMissing
	}

	profile := &model.Profile{
		AccountID: accountID,
		Nickname:  req.Nickname,
		Bio:       req.Bio,
		BirthDate: req.BirthDate,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("[Profile] Created profile=%d account=%d nickname=%s", profile.ID, accountID, profile.Nickname)
	return profile, nil
}

// Get returns a profile with both sides of its follow relation.
func (s *ProfileService) Get(ctx context.Context, profileID int64) (*model.ProfileDetail, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	following, err := s.profileRepo.GetFollowing(ctx, profileID)
	if err != nil {
		return nil, err
	}
	followers, err := s.profileRepo.GetFollowers(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if following == nil {
		following = []model.ProfileSummary{}
	}
	if followers == nil {
		followers = []model.ProfileSummary{}
	}

	return &model.ProfileDetail{
		Profile:   profile,
		Following: following,
		Followers: followers,
	}, nil
}

// GetOwn returns the caller's profile by account.
func (s *ProfileService) GetOwn(ctx context.Context, accountID int64) (*model.Profile, error) {
	return s.profileRepo.GetByAccountID(ctx, accountID)
}

// List returns profile summaries matching the filter.
func (s *ProfileService) List(ctx context.Context, filter model.ProfileFilter) ([]model.ProfileSummary, error) {
	profiles, err := s.profileRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []model.ProfileSummary{}
	}
	return profiles, nil
}

// Update applies partial changes to a profile. Only the owner may update.
func (s *ProfileService) Update(ctx context.Context, accountID, profileID int64, req *model.UpdateProfileRequest) (*model.Profile, error) {
	profile, err := s.ownedProfile(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		profile.Nickname = *req.Nickname
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.BirthDate != nil {
		profile.BirthDate = req.BirthDate
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Delete removes a profile. Only the owner may delete.
func (s *ProfileService) Delete(ctx context.Context, accountID, profileID int64) error {
	profile, err := s.ownedProfile(ctx, accountID, profileID)
	if err != nil {
		return err
	}

	if err := s.profileRepo.Delete(ctx, profile.ID); err != nil {
		return err
	}

	if profile.PhotoKey != nil {
		if err := s.mediaService.DeleteObject(ctx, *profile.PhotoKey); err != nil {
			log.Printf("[Profile] Failed to delete photo key=%s: %v", *profile.PhotoKey, err)
		}
	}

	log.Printf("[Profile] Deleted profile=%d account=%d", profileID, accountID)
	return nil
}

// UploadPhoto stores a new profile photo and swaps out the old one.
func (s *ProfileService) UploadPhoto(ctx context.Context, accountID, profileID int64, file multipart.File, header *multipart.FileHeader) (*model.Profile, error) {
	profile, err := s.ownedProfile(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}

	result, err := s.mediaService.UploadProfileImage(ctx, profile.Nickname, file, header)
	if err != nil {
		return nil, err
	}

	oldKey := profile.PhotoKey
	if err := s.profileRepo.UpdatePhoto(ctx, profile.ID, result.URL, result.Key); err != nil {
		return nil, err
	}

	if oldKey != nil && *oldKey != result.Key {
		if err := s.mediaService.DeleteObject(ctx, *oldKey); err != nil {
			log.Printf("[Profile] Failed to delete old photo key=%s: %v", *oldKey, err)
		}
	}

	profile.PhotoURL = &result.URL
	profile.PhotoKey = &result.Key
	return profile, nil
}

// Follow adds a follow edge from the caller's profile to the target.
// Following yourself is rejected; following twice is reported as a conflict.
func (s *ProfileService) Follow(ctx context.Context, accountID, targetID int64) error {
	follower, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return err
	}

	if follower.ID == targetID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.profileRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	inserted, err := s.profileRepo.Follow(ctx, follower.ID, targetID)
	if err != nil {
		return err
	}
	if !inserted {
		return model.ErrAlreadyFollowing
	}

	log.Printf("[Profile] Follow: follower=%d followee=%d", follower.ID, targetID)
	return nil
}

// Unfollow removes a follow edge from the caller's profile to the target.
func (s *ProfileService) Unfollow(ctx context.Context, accountID, targetID int64) error {
	follower, err := s.profileRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return err
	}

	if follower.ID == targetID {
		return model.ErrCannotFollowSelf
	}

	if err := s.profileRepo.Unfollow(ctx, follower.ID, targetID); err != nil {
		return err
	}

	log.Printf("[Profile] Unfollow: follower=%d followee=%d", follower.ID, targetID)
	return nil
}

// ownedProfile loads a profile and verifies the caller owns it.
func (s *ProfileService) ownedProfile(ctx context.Context, accountID, profileID int64) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.AccountID != accountID {
		return nil, fmt.Errorf("profile %d: %w", profileID, model.ErrNotProfileOwner)
	}
	return profile, nil
}
