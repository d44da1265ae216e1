package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/spendtrail/spendtrail/internal/auth"
	"github.com/spendtrail/spendtrail/internal/models"
	"github.com/spendtrail/spendtrail/internal/services"
	pkghttp "github.com/spendtrail/spendtrail/pkg/http"
)

// UserServiceInterface defines the interface for account lifecycle business logic
type UserServiceInterface interface {
	Register(ctx context.Context, username, fullName, email, password string) (*services.ProfileResponse, error)
	Login(ctx context.Context, username, email, password string) (*services.TokenPair, *services.ProfileResponse, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, presented string) (*services.TokenPair, error)
	GetProfile(ctx context.Context, userID string) (*services.ProfileResponse, error)
	UpdateFullName(ctx context.Context, userID, fullName string) (*services.ProfileResponse, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	VerifyEmail(ctx context.Context, token string) (*services.ProfileResponse, error)
	ResendVerification(ctx context.Context, userID string) error
	ForgetPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	DeleteAccount(ctx context.Context, userID string) error
}

// UserHandler handles account lifecycle HTTP requests
type UserHandler struct {
	service       UserServiceInterface
	cookieConfig  auth.CookieConfig
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface, cookieConfig auth.CookieConfig, accessExpiry, refreshExpiry time.Duration) *UserHandler {
	return &UserHandler{
		service:       service,
		cookieConfig:  cookieConfig,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	FullName string `json:"fullName" validate:"required,min=3,max=50,fullname"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest represents the request body for login. Username and email are
// individually optional but at least one must be present.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RefreshRequest carries the refresh token when the client does not use cookies
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateProfileRequest represents the request body for profile updates
type UpdateProfileRequest struct {
	FullName string `json:"fullName" validate:"required,min=3,max=50,fullname"`
}

// ChangePasswordRequest represents the request body for password changes
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

// ForgetPasswordRequest represents the request body for password reset requests
type ForgetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the request body for password resets
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

// LoginResponse is the login payload: the redacted profile plus both tokens,
// mirroring what the cookies carry for non-browser clients.
type LoginResponse struct {
	User         *services.ProfileResponse `json:"user"`
	AccessToken  string                    `json:"accessToken"`
	RefreshToken string                    `json:"refreshToken"`
}

// Register handles POST /users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	profile, err := h.service.Register(r.Context(), req.Username, req.FullName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "User already exists")
			return
		}
		pkghttp.WriteFromError(w, err, "Failed to register user")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "User registered successfully", profile)
}

// Login handles POST /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if req.Username == "" && req.Email == "" {
		pkghttp.WriteBadRequest(w, "Username or email is required")
		return
	}

	pair, profile, err := h.service.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Invalid credentials")
		default:
			pkghttp.WriteFromError(w, err, "Failed to log in")
		}
		return
	}

	auth.SetAuthCookies(w, pair.AccessToken, pair.RefreshToken, h.accessExpiry, h.refreshExpiry, h.cookieConfig)
	pkghttp.WriteSuccess(w, http.StatusOK, "User logged in successfully", LoginResponse{
		User:         profile,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout handles POST /users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	if err := h.service.Logout(r.Context(), user.ID); err != nil {
		pkghttp.WriteFromError(w, err, "Failed to log out")
		return
	}

	auth.ClearAuthCookies(w, h.cookieConfig)
	pkghttp.WriteSuccess(w, http.StatusOK, "User logged out successfully", nil)
}

// RefreshTokens handles POST /users/refresh-tokens. The presented refresh
// token comes from the refreshToken cookie or, failing that, the body.
func (h *UserHandler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	presented, err := auth.GetRefreshTokenCookie(r)
	if err != nil || presented == "" {
		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	if presented == "" {
		pkghttp.WriteUnauthorized(w, "Refresh token is missing")
		return
	}

	pair, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Invalid refresh token")
			return
		}
		pkghttp.WriteFromError(w, err, "Failed to refresh tokens")
		return
	}

	auth.SetAuthCookies(w, pair.AccessToken, pair.RefreshToken, h.accessExpiry, h.refreshExpiry, h.cookieConfig)
	pkghttp.WriteSuccess(w, http.StatusOK, "Tokens refreshed successfully", pair)
}

// GetProfile handles GET /users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteFromError(w, err, "User not found")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Profile fetched successfully", profile)
}

// UpdateProfile handles PATCH /users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	profile, err := h.service.UpdateFullName(r.Context(), user.ID, req.FullName)
	if err != nil {
		pkghttp.WriteFromError(w, err, "Failed to update profile")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Profile updated successfully", profile)
}

// ChangePassword handles PATCH /users/change-password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Invalid old password")
			return
		}
		pkghttp.WriteFromError(w, err, "Failed to change password")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Password changed successfully", nil)
}

// VerifyEmail handles GET /users/verify-email?token=
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		pkghttp.WriteBadRequest(w, "Token is required")
		return
	}

	profile, err := h.service.VerifyEmail(r.Context(), token)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			pkghttp.WriteBadRequest(w, "Invalid or expired token")
			return
		}
		pkghttp.WriteFromError(w, err, "Failed to verify email")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Email verified successfully", profile)
}

// ResendVerification handles GET /users/resend-verification
func (h *UserHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	if err := h.service.ResendVerification(r.Context(), user.ID); err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Email is already verified")
			return
		}
		pkghttp.WriteFromError(w, err, "Failed to resend verification email")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Verification email sent", nil)
}

// ForgetPassword handles POST /users/forget-password
func (h *UserHandler) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ForgetPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteFromError(w, err, "Failed to send password reset email")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Password reset email sent", nil)
}

// ResetPassword handles POST /users/reset-password?token=
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		pkghttp.WriteBadRequest(w, "Token is required")
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, req.NewPassword); err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			pkghttp.WriteBadRequest(w, "Invalid or expired token")
			return
		}
		pkghttp.WriteFromError(w, err, "Failed to reset password")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Password reset successfully", nil)
}

// DeleteAccount handles DELETE /users/delete
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized request")
		return
	}

	if err := h.service.DeleteAccount(r.Context(), user.ID); err != nil {
		pkghttp.WriteFromError(w, err, "Failed to delete account")
		return
	}

	auth.ClearAuthCookies(w, h.cookieConfig)
	pkghttp.WriteSuccess(w, http.StatusOK, "Account deleted successfully", nil)
}
