package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sociable/internal/model"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create inserts a new profile. The one-profile-per-account and
// nickname-unique invariants are both enforced by unique constraints, so a
// duplicate insert surfaces as a typed error rather than a silent overwrite.
func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (account_id, nickname, bio, birth_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, p.AccountID, p.Nickname, p.Bio, p.BirthDate).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "profiles_account_id_key" {
				return model.ErrProfileExists
			}
			return model.ErrNicknameExists
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	query := `
		SELECT id, account_id, nickname, bio, photo_url, photo_key, birth_date, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return &p, nil
}

func (r *profileRepository) GetByAccountID(ctx context.Context, accountID int64) (*model.Profile, error) {
	query := `
		SELECT id, account_id, nickname, bio, photo_url, photo_key, birth_date, created_at, updated_at
		FROM profiles
		WHERE account_id = $1
	`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by account id: %w", err)
	}

	return &p, nil
}

func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET nickname = $1, bio = $2, birth_date = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, p.Nickname, p.Bio, p.BirthDate, p.ID).
		Scan(&p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrProfileNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrNicknameExists
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// UpdatePhoto replaces the stored photo location.
func (r *profileRepository) UpdatePhoto(ctx context.Context, id int64, photoURL, photoKey string) error {
	query := `UPDATE profiles SET photo_url = $1, photo_key = $2, updated_at = NOW() WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, photoURL, photoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update profile photo: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrProfileNotFound
	}

	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrProfileNotFound
	}

	return nil
}

// List returns profile summaries matching the filter. Nickname matches the
// profile itself; first/last name match the linked account. All matches are
// case-insensitive substring (ILIKE).
func (r *profileRepository) List(ctx context.Context, filter model.ProfileFilter) ([]model.ProfileSummary, error) {
	query := `
		SELECT p.id, p.nickname, p.photo_url
		FROM profiles p
		JOIN accounts a ON a.id = p.account_id
		WHERE ($1 = '' OR p.nickname ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR a.first_name ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR a.last_name ILIKE '%' || $3 || '%')
		ORDER BY p.nickname
	`

	var profiles []model.ProfileSummary
	err := r.db.SelectContext(ctx, &profiles, query, filter.Nickname, filter.FirstName, filter.LastName)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, nil
}

// Follow adds a directed edge. ON CONFLICT DO NOTHING makes the duplicate
// case observable through rows affected instead of an error.
func (r *profileRepository) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `
		INSERT INTO profile_follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to create follow edge: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *profileRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	query := `DELETE FROM profile_follows WHERE follower_id = $1 AND followee_id = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	return nil
}

func (r *profileRepository) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profile_follows WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}
	return exists, nil
}

// GetFollowing returns the profiles the given profile follows.
func (r *profileRepository) GetFollowing(ctx context.Context, profileID int64) ([]model.ProfileSummary, error) {
	query := `
		SELECT p.id, p.nickname, p.photo_url
		FROM profile_follows f
		JOIN profiles p ON p.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`

	var profiles []model.ProfileSummary
	err := r.db.SelectContext(ctx, &profiles, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}

	return profiles, nil
}

// GetFollowers is the reverse lookup over the same edge set.
func (r *profileRepository) GetFollowers(ctx context.Context, profileID int64) ([]model.ProfileSummary, error) {
	query := `
		SELECT p.id, p.nickname, p.photo_url
		FROM profile_follows f
		JOIN profiles p ON p.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
	`

	var profiles []model.ProfileSummary
	err := r.db.SelectContext(ctx, &profiles, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}

	return profiles, nil
}
