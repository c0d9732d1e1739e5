package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"sociable/internal/model"
	"sociable/internal/repository"
)

// AccountService handles registration, login, and account maintenance.
type AccountService struct {
	accountRepo repository.AccountRepository
	authService *AuthService
}

func NewAccountService(accountRepo repository.AccountRepository, authService *AuthService) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		authService: authService,
	}
}

// Register creates a new account with a hashed password.
func (s *AccountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, model.ErrEmailMissing
	}
	if !emailRegex.MatchString(email) {
		return nil, model.ErrEmailInvalid
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.accountRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Email:          email,
		PasswordHashed: string(hashed),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	log.Printf("[Account] Registered account=%d email=%s", account.ID, account.Email)
	return account, nil
}

// Login checks credentials and issues a token pair.
func (s *AccountService) Login(ctx context.Context, req *model.LoginRequest, deviceInfo, ipAddress string) (*model.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		// Same error for unknown email and bad password
		return nil, model.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return s.authService.GenerateTokenPair(ctx, account.ID, deviceInfo, ipAddress)
}

// Get returns the caller's own account.
func (s *AccountService) Get(ctx context.Context, accountID int64) (*model.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// Update applies partial changes to the caller's own account.
func (s *AccountService) Update(ctx context.Context, accountID int64, req *model.UpdateAccountRequest) (*model.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailRegex.MatchString(email) {
			return nil, model.ErrEmailInvalid
		}
		account.Email = email
	}
	if req.FirstName != nil {
		account.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		account.LastName = *req.LastName
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// ChangePassword verifies the old password, validates the new one, stores
// the new hash, and revokes every outstanding refresh token.
func (s *AccountService) ChangePassword(ctx context.Context, accountID int64, req *model.ChangePasswordRequest) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHashed), []byte(req.OldPassword)); err != nil {
		return model.ErrWrongOldPassword
	}

	if req.NewPassword == req.OldPassword {
		return model.ErrSamePassword
	}

	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePassword(ctx, accountID, string(hashed)); err != nil {
		return err
	}

	// Stale sessions must not survive a password change.
	if err := s.authService.RevokeAllAccountTokens(ctx, accountID); err != nil {
		log.Printf("[Account] Failed to revoke tokens after password change account=%d: %v", accountID, err)
	}

	log.Printf("[Account] Password changed account=%d", accountID)
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// validatePassword enforces minimum length and rejects all-numeric passwords.
func validatePassword(password string) error {
	if len(password) < model.MinPasswordLength {
		return model.ErrWeakPassword
	}

	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return model.ErrWeakPassword
	}

	return nil
}
