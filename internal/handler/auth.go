package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sociable/internal/httputil"
	"sociable/internal/model"
	"sociable/internal/service"
	"sociable/internal/transport/http/middleware"
)

// AuthHandler groups account and token endpoints and their dependencies.
type AuthHandler struct {
	accountService *service.AccountService
	authService    *service.AuthService
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(accountService *service.AccountService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		authService:    authService,
	}
}

// Register handles sign-up
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	account, err := h.accountService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already registered")
		case errors.Is(err, model.ErrWeakPassword):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrEmailMissing):
			httputil.WriteBadRequest(w, "Email is required")
		case errors.Is(err, model.ErrEmailInvalid):
			httputil.WriteBadRequest(w, "Invalid email address")
		default:
			httputil.WriteInternalError(w, "Failed to register")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, account)
}

// Token handles login, exchanging credentials for a token pair
// POST /token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	deviceInfo := r.Header.Get("User-Agent")
	ipAddress := getClientIP(r)

	tokenPair, err := h.accountService.Login(r.Context(), &req, deviceInfo, ipAddress)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokenPair)
}

// Refresh handles token rotation
// POST /token/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		httputil.WriteBadRequest(w, "Refresh token is required")
		return
	}

	deviceInfo := r.Header.Get("User-Agent")
	ipAddress := getClientIP(r)

	tokenPair, _, err := h.authService.RefreshTokens(r.Context(), req.RefreshToken, deviceInfo, ipAddress)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRefreshTokenNotFound):
			httputil.WriteUnauthorized(w, "Invalid refresh token")
		case errors.Is(err, model.ErrRefreshTokenExpired):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Refresh token has expired")
		case errors.Is(err, model.ErrRefreshTokenReused):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenReused, "Refresh token reuse detected. Please login again.")
		default:
			httputil.WriteInternalError(w, "Failed to refresh tokens")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokenPair)
}

// Verify checks an access token without side effects
// POST /token/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Token == "" {
		httputil.WriteBadRequest(w, "Token is required")
		return
	}

	if _, err := h.authService.VerifyAccessToken(req.Token); err != nil {
		httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid or expired token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "valid"})
}

// Me returns the currently authenticated account
// GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	account, err := h.accountService.Get(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			httputil.WriteNotFound(w, "Account not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get account")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, account)
}

// UpdateMe applies partial changes to the caller's account
// PUT/PATCH /me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	account, err := h.accountService.Update(r.Context(), accountID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAccountNotFound):
			httputil.WriteNotFound(w, "Account not found")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already registered")
		case errors.Is(err, model.ErrEmailInvalid):
			httputil.WriteBadRequest(w, "Invalid email address")
		default:
			httputil.WriteInternalError(w, "Failed to update account")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, account)
}

// ChangePassword verifies the old password and swaps in the new one
// POST /change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		httputil.WriteBadRequest(w, "Both old and new passwords are required")
		return
	}

	err := h.accountService.ChangePassword(r.Context(), accountID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrWrongOldPassword):
			httputil.WriteBadRequest(w, "Incorrect old password")
		case errors.Is(err, model.ErrSamePassword):
			httputil.WriteBadRequest(w, "The new password must be different from the old one")
		case errors.Is(err, model.ErrWeakPassword):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrAccountNotFound):
			httputil.WriteNotFound(w, "Account not found")
		default:
			httputil.WriteInternalError(w, "Failed to change password")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// Logout revokes the presented refresh token
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req model.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		httputil.WriteBadRequest(w, "Refresh token is required")
		return
	}

	if err := h.authService.RevokeRefreshToken(r.Context(), req.RefreshToken); err != nil {
		httputil.WriteBadRequest(w, "Invalid refresh token")
		return
	}

	// 205 tells clients to reset their view of the session
	w.WriteHeader(http.StatusResetContent)
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	// RemoteAddr is "IP:port"
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
