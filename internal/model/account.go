package model

import (
	"errors"
	"time"
)

// Account holds login credentials and the user's legal name. The social
// identity lives on Profile; exactly one profile may exist per account.
type Account struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	IsStaff        bool      `db:"is_staff" json:"is_staff"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// RegisterRequest represents the data needed to register a new account
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest represents the data needed to obtain a token pair
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateAccountRequest carries partial updates to the caller's own account.
// Nil fields are left untouched.
type UpdateAccountRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// ChangePasswordRequest is the request body for POST /change-password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// MinPasswordLength is the minimum accepted password length
const MinPasswordLength = 8

var (
	// ErrAccountNotFound is returned when an account cannot be found
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmailExists is returned when attempting to register a taken email
	ErrEmailExists = errors.New("email already registered")

	// ErrEmailMissing is returned when registering without an email
	ErrEmailMissing = errors.New("email is required")

	// ErrEmailInvalid is returned when an email fails format validation
	ErrEmailInvalid = errors.New("invalid email address")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWeakPassword is returned when a password fails strength validation
	ErrWeakPassword = errors.New("password must be at least 8 characters and not entirely numeric")

	// ErrWrongOldPassword is returned when the old password check fails
	ErrWrongOldPassword = errors.New("incorrect old password")

	// ErrSamePassword is returned when the new password equals the old one
	ErrSamePassword = errors.New("the new password must be different from the old one")
)
