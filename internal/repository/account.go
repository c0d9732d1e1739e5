package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sociable/internal/model"
)

// accountRepository implements AccountRepository using sqlx
type accountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account into the database
func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	query := `
		INSERT INTO accounts (email, password_hashed, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, is_staff, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		a.Email,
		a.PasswordHashed,
		a.FirstName,
		a.LastName,
	)

	err := row.Scan(&a.ID, &a.IsActive, &a.IsStaff, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrEmailExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	query := `
		SELECT id, email, password_hashed, first_name, last_name, is_active, is_staff,
		       created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var a model.Account
	err := r.db.GetContext(ctx, &a, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}

	return &a, nil
}

// GetByEmail retrieves an account by its email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `
		SELECT id, email, password_hashed, first_name, last_name, is_active, is_staff,
		       created_at, updated_at
		FROM accounts
		WHERE email = $1
	`

	var a model.Account
	err := r.db.GetContext(ctx, &a, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return &a, nil
}

// ExistsByEmail checks if an email is already registered
func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// Update persists email and name changes on an account
func (r *accountRepository) Update(ctx context.Context, a *model.Account) error {
	query := `
		UPDATE accounts
		SET email = $1, first_name = $2, last_name = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, a.Email, a.FirstName, a.LastName, a.ID).
		Scan(&a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrAccountNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrEmailExists
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	return nil
}

// UpdatePassword replaces the stored password hash
func (r *accountRepository) UpdatePassword(ctx context.Context, id int64, passwordHashed string) error {
	query := `UPDATE accounts SET password_hashed = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, passwordHashed, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrAccountNotFound
	}

	return nil
}

// Delete removes an account. The profile and all dependent content go with
// it via ON DELETE CASCADE.
func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrAccountNotFound
	}

	return nil
}
