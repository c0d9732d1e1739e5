package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sociable/internal/config"
	"sociable/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on the repository INTERFACES, so tests swap in mocks with
// per-test behavior instead of hitting a real database.

type mockAccountRepository struct {
	createFn         func(ctx context.Context, a *model.Account) error
	getByIDFn        func(ctx context.Context, id int64) (*model.Account, error)
	getByEmailFn     func(ctx context.Context, email string) (*model.Account, error)
	existsByEmailFn  func(ctx context.Context, email string) (bool, error)
	updateFn         func(ctx context.Context, a *model.Account) error
	updatePasswordFn func(ctx context.Context, id int64, hash string) error

	createCalls         int
	updatePasswordCalls int
}

func (m *mockAccountRepository) Create(ctx context.Context, a *model.Account) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	return nil
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrAccountNotFound
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrAccountNotFound
}

func (m *mockAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockAccountRepository) Update(ctx context.Context, a *model.Account) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, a)
	}
	return nil
}

func (m *mockAccountRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	m.updatePasswordCalls++
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, id, hash)
	}
	return nil
}

func (m *mockAccountRepository) Delete(ctx context.Context, id int64) error {
	return nil
}

type mockRefreshTokenRepository struct {
	createFn            func(ctx context.Context, token *model.RefreshToken) error
	findByTokenHashFn   func(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	revokeFn            func(ctx context.Context, id string, replacedBy *string) error
	revokeAllForAccount func(ctx context.Context, accountID int64) error

	revokeAllCalls int
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	token.ID = "token-id"
	token.CreatedAt = time.Now()
	return nil
}

func (m *mockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	if m.findByTokenHashFn != nil {
		return m.findByTokenHashFn(ctx, tokenHash)
	}
	return nil, model.ErrRefreshTokenNotFound
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, id string, replacedBy *string) error {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, id, replacedBy)
	}
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForAccount(ctx context.Context, accountID int64) error {
	m.revokeAllCalls++
	if m.revokeAllForAccount != nil {
		return m.revokeAllForAccount(ctx, accountID)
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		AccessTokenMaxAge:  900,
		RefreshTokenMaxAge: 3600,
	}
}

func newTestAccountService(accountRepo *mockAccountRepository, tokenRepo *mockRefreshTokenRepository) *AccountService {
	authService := NewAuthService(tokenRepo, testConfig())
	return NewAccountService(accountRepo, authService)
}

// =============================================================================
// REGISTER TESTS
// =============================================================================

func TestAccountService_Register_Success(t *testing.T) {
	// ARRANGE
	mockRepo := &mockAccountRepository{
		createFn: func(ctx context.Context, a *model.Account) error {
			a.ID = 1
			a.IsActive = true
			a.CreatedAt = time.Now()
			a.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := newTestAccountService(mockRepo, &mockRefreshTokenRepository{})

	req := &model.RegisterRequest{
		Email:     "Alice@Example.com",
		Password:  "securepassword123",
		FirstName: "Alice",
		LastName:  "Nguyen",
	}

	// ACT
	account, err := svc.Register(context.Background(), req)

	// ASSERT
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if account == nil {
		t.Fatal("expected account, got nil")
	}

	if account.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased %q", account.Email, "alice@example.com")
	}

	// Password must be stored as a valid bcrypt hash, never plain text
	if account.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHashed), []byte(req.Password)); err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}

	if mockRepo.createCalls != 1 {
		t.Errorf("Create called %d times, want 1", mockRepo.createCalls)
	}
}

func TestAccountService_Register_EmailExists(t *testing.T) {
	mockRepo := &mockAccountRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestAccountService(mockRepo, &mockRefreshTokenRepository{})

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "taken@example.com",
		Password: "securepassword123",
	})

	if !errors.Is(err, model.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got: %v", err)
	}
	if mockRepo.createCalls != 0 {
		t.Error("Create should not be called when the email is taken")
	}
}

func TestAccountService_Register_InvalidEmail(t *testing.T) {
	mockRepo := &mockAccountRepository{}
	svc := newTestAccountService(mockRepo, &mockRefreshTokenRepository{})

	for _, email := range []string{"notanemail", "missing@tld", "@example.com"} {
		_, err := svc.Register(context.Background(), &model.RegisterRequest{
			Email:    email,
			Password: "securepassword123",
		})
		if !errors.Is(err, model.ErrEmailInvalid) {
			t.Errorf("Register(%q): expected ErrEmailInvalid, got: %v", email, err)
		}
	}
	if mockRepo.createCalls != 0 {
		t.Error("Create should not be called for a malformed email")
	}
}

func TestAccountService_Register_WeakPasswords(t *testing.T) {
	svc := newTestAccountService(&mockAccountRepository{}, &mockRefreshTokenRepository{})

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "short1"},
		{"entirely numeric", "1234567890"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &model.RegisterRequest{
				Email:    "user@example.com",
				Password: tc.password,
			})
			if !errors.Is(err, model.ErrWeakPassword) {
				t.Errorf("expected ErrWeakPassword, got: %v", err)
			}
		})
	}
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestAccountService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.DefaultCost)
	mockRepo := &mockAccountRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return &model.Account{ID: 1, Email: email, PasswordHashed: string(hash), IsActive: true}, nil
		},
	}
	svc := newTestAccountService(mockRepo, &mockRefreshTokenRepository{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "user@example.com",
		Password: "wrongpassword",
	}, "", "")

	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestAccountService_Login_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.DefaultCost)
	mockRepo := &mockAccountRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return &model.Account{ID: 7, Email: email, PasswordHashed: string(hash), IsActive: true}, nil
		},
	}
	svc := newTestAccountService(mockRepo, &mockRefreshTokenRepository{})

	pair, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "user@example.com",
		Password: "correctpassword",
	}, "test-agent", "127.0.0.1")

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both tokens to be issued")
	}
	if pair.ExpiresIn != 900 {
		t.Errorf("expires_in = %d, want 900", pair.ExpiresIn)
	}
}

// =============================================================================
// CHANGE PASSWORD TESTS
// =============================================================================

func changePasswordFixture(t *testing.T, current string) *mockAccountRepository {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(current), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return &mockAccountRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Account, error) {
			return &model.Account{ID: id, PasswordHashed: string(hash), IsActive: true}, nil
		},
	}
}

func TestAccountService_ChangePassword_WrongOld(t *testing.T) {
	mockRepo := changePasswordFixture(t, "oldpassword1")
	svc := newTestAccountService(mockRepo, &mockRefreshTokenRepository{})

	err := svc.ChangePassword(context.Background(), 1, &model.ChangePasswordRequest{
		OldPassword: "notthepassword",
		NewPassword: "newpassword1",
	})

	if !errors.Is(err, model.ErrWrongOldPassword) {
		t.Errorf("expected ErrWrongOldPassword, got: %v", err)
	}
	if mockRepo.updatePasswordCalls != 0 {
		t.Error("UpdatePassword should not be called on a failed old-password check")
	}
}

func TestAccountService_ChangePassword_SameAsOld(t *testing.T) {
	mockRepo := changePasswordFixture(t, "oldpassword1")
	svc := newTestAccountService(mockRepo, &mockRefreshTokenRepository{})

	err := svc.ChangePassword(context.Background(), 1, &model.ChangePasswordRequest{
		OldPassword: "oldpassword1",
		NewPassword: "oldpassword1",
	})

	if !errors.Is(err, model.ErrSamePassword) {
		t.Errorf("expected ErrSamePassword, got: %v", err)
	}
}

func TestAccountService_ChangePassword_Success(t *testing.T) {
	mockRepo := changePasswordFixture(t, "oldpassword1")
	tokenRepo := &mockRefreshTokenRepository{}
	svc := newTestAccountService(mockRepo, tokenRepo)

	err := svc.ChangePassword(context.Background(), 1, &model.ChangePasswordRequest{
		OldPassword: "oldpassword1",
		NewPassword: "brandnewpassword",
	})

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if mockRepo.updatePasswordCalls != 1 {
		t.Errorf("UpdatePassword called %d times, want 1", mockRepo.updatePasswordCalls)
	}
	// Every outstanding session must die with the old password
	if tokenRepo.revokeAllCalls != 1 {
		t.Errorf("RevokeAllForAccount called %d times, want 1", tokenRepo.revokeAllCalls)
	}
}
