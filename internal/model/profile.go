package model

import (
	"errors"
	"time"
)

// Profile is a user's social identity, distinct from the login account.
type Profile struct {
	ID        int64      `db:"id" json:"id"`
	AccountID int64      `db:"account_id" json:"-"`
	Nickname  string     `db:"nickname" json:"nickname"`
	Bio       string     `db:"bio" json:"bio"`
	PhotoURL  *string    `db:"photo_url" json:"photo"`
	PhotoKey  *string    `db:"photo_key" json:"-"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// ProfileSummary is a lightweight representation used in lists and as the
// author reference on posts, comments, and messages.
type ProfileSummary struct {
	ID       int64   `db:"id" json:"id"`
	Nickname string  `db:"nickname" json:"nickname"`
	PhotoURL *string `db:"photo_url" json:"photo"`
}

// ProfileDetail is the single-profile response with both sides of the
// follow relation. Followers is a reverse lookup over the edge set, never
// a stored collection.
type ProfileDetail struct {
	*Profile
	Following []ProfileSummary `json:"following"`
	Followers []ProfileSummary `json:"followers"`
}

// CreateProfileRequest is the request body for creating a profile
type CreateProfileRequest struct {
	Nickname  string     `json:"nickname"`
	Bio       string     `json:"bio"`
	BirthDate *time.Time `json:"birth_date"`
}

// UpdateProfileRequest carries partial profile updates. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	Nickname  *string    `json:"nickname"`
	Bio       *string    `json:"bio"`
	BirthDate *time.Time `json:"birth_date"`
}

// ProfileFilter holds the case-insensitive substring filters for listing
// profiles. Zero-value fields are ignored.
type ProfileFilter struct {
	Nickname  string
	FirstName string
	LastName  string
}

var (
	// ErrProfileNotFound is returned when a profile cannot be found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileExists is returned when the account already has a profile
	ErrProfileExists = errors.New("account already has a profile")

	// ErrNicknameExists is returned when the nickname is already taken
	ErrNicknameExists = errors.New("nickname already taken")

	// ErrNicknameMissing is returned when a profile is created without one
	ErrNicknameMissing = errors.New("nickname is required")

	// ErrNotProfileOwner is returned on mutation attempts by a non-owner
	ErrNotProfileOwner = errors.New("not the owner of this profile")

	// Follow edge errors
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this profile")
	ErrNotFollowing     = errors.New("not following this profile")
)
