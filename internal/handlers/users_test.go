package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spendtrail/spendtrail/internal/auth"
	"github.com/spendtrail/spendtrail/internal/handlers"
	"github.com/spendtrail/spendtrail/internal/models"
	"github.com/spendtrail/spendtrail/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserHandler(svc handlers.UserServiceInterface) *handlers.UserHandler {
	return handlers.NewUserHandler(svc, auth.CookieConfig{}, 15*time.Minute, 7*24*time.Hour)
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ============================================================================
// Register
// ============================================================================

func TestRegister_Success(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		RegisterFunc: func(ctx context.Context, username, fullName, email, password string) (*services.ProfileResponse, error) {
			return &services.ProfileResponse{ID: "user123", Username: username, Email: email}, nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "POST", "/users/register", handlers.RegisterRequest{
		Username: "alice1",
		FullName: "Alice Smith",
		Email:    "alice@example.com",
		Password: "SecurePassword123",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	var profile services.ProfileResponse
	handlers.AssertJSONResponse(t, w, 201, &profile)
	assert.Equal(t, "user123", profile.ID)
}

func TestRegister_DuplicateUser(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		RegisterFunc: func(ctx context.Context, username, fullName, email, password string) (*services.ProfileResponse, error) {
			return nil, models.ErrConflict
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "POST", "/users/register", handlers.RegisterRequest{
		Username: "alice1",
		FullName: "Alice Smith",
		Email:    "alice@example.com",
		Password: "SecurePassword123",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	handlers.AssertErrorResponse(t, w, 409, "User already exists")
}

func TestRegister_ValidationFailures(t *testing.T) {
	handler := newUserHandler(&handlers.MockUserService{})

	cases := []struct {
		name string
		req  handlers.RegisterRequest
	}{
		{"short username", handlers.RegisterRequest{Username: "ab", FullName: "Alice Smith", Email: "alice@example.com", Password: "SecurePassword123"}},
		{"username starts with digit", handlers.RegisterRequest{Username: "1alice", FullName: "Alice Smith", Email: "alice@example.com", Password: "SecurePassword123"}},
		{"full name with digits", handlers.RegisterRequest{Username: "alice1", FullName: "Alice 2nd", Email: "alice@example.com", Password: "SecurePassword123"}},
		{"bad email", handlers.RegisterRequest{Username: "alice1", FullName: "Alice Smith", Email: "not-an-email", Password: "SecurePassword123"}},
		{"short password", handlers.RegisterRequest{Username: "alice1", FullName: "Alice Smith", Email: "alice@example.com", Password: "short"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := handlers.NewTestRequest(t, "POST", "/users/register", tc.req)
			w := httptest.NewRecorder()
			handler.Register(w, req)

			assert.Equal(t, 400, w.Code)
		})
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	handler := newUserHandler(&handlers.MockUserService{})

	req := httptest.NewRequest("POST", "/users/register", nil)
	w := httptest.NewRecorder()
	handler.Register(w, req)

	handlers.AssertErrorResponse(t, w, 400, "Invalid request body")
}

// ============================================================================
// Login
// ============================================================================

func TestLogin_Success_SetsCookies(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		LoginFunc: func(ctx context.Context, username, email, password string) (*services.TokenPair, *services.ProfileResponse, error) {
			return &services.TokenPair{AccessToken: "access123", RefreshToken: "refresh123"},
				&services.ProfileResponse{ID: "user123", Username: username}, nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "POST", "/users/login", handlers.LoginRequest{
		Username: "alice1",
		Password: "SecurePassword123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp handlers.LoginResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "access123", resp.AccessToken)
	assert.Equal(t, "refresh123", resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "user123", resp.User.ID)

	cookies := w.Result().Cookies()
	accessCookie := cookieByName(cookies, auth.AccessTokenCookie)
	refreshCookie := cookieByName(cookies, auth.RefreshTokenCookie)
	require.NotNil(t, accessCookie)
	require.NotNil(t, refreshCookie)
	assert.Equal(t, "access123", accessCookie.Value)
	assert.Equal(t, "refresh123", refreshCookie.Value)
	assert.True(t, accessCookie.HttpOnly)
	assert.True(t, refreshCookie.HttpOnly)
}

func TestLogin_UnknownUser(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		LoginFunc: func(ctx context.Context, username, email, password string) (*services.TokenPair, *services.ProfileResponse, error) {
			return nil, nil, models.ErrNotFound
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "POST", "/users/login", handlers.LoginRequest{
		Username: "nobody",
		Password: "SecurePassword123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 404, "User not found")
}

func TestLogin_WrongPassword(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		LoginFunc: func(ctx context.Context, username, email, password string) (*services.TokenPair, *services.ProfileResponse, error) {
			return nil, nil, models.ErrUnauthorized
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "POST", "/users/login", handlers.LoginRequest{
		Username: "alice1",
		Password: "WrongPassword999",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 401, "Invalid credentials")
}

func TestLogin_RequiresUsernameOrEmail(t *testing.T) {
	handler := newUserHandler(&handlers.MockUserService{})
	req := handlers.NewTestRequest(t, "POST", "/users/login", handlers.LoginRequest{
		Password: "SecurePassword123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 400, "Username or email is required")
}

// ============================================================================
// Logout / Refresh
// ============================================================================

func TestLogout_ClearsCookies(t *testing.T) {
	var loggedOut string
	mockSvc := &handlers.MockUserService{
		LogoutFunc: func(ctx context.Context, userID string) error {
			loggedOut = userID
			return nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "POST", "/users/logout", nil), "user123")

	w := httptest.NewRecorder()
	handler.Logout(w, req)

	handlers.AssertJSONResponse(t, w, 200, nil)
	assert.Equal(t, "user123", loggedOut)

	cookies := w.Result().Cookies()
	accessCookie := cookieByName(cookies, auth.AccessTokenCookie)
	require.NotNil(t, accessCookie)
	assert.Empty(t, accessCookie.Value)
	assert.Negative(t, accessCookie.MaxAge)
}

func TestRefreshTokens_FromCookie(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		RefreshFunc: func(ctx context.Context, presented string) (*services.TokenPair, error) {
			assert.Equal(t, "old-refresh", presented)
			return &services.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "POST", "/users/refresh-tokens", nil), "user123")
	req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "old-refresh"})

	w := httptest.NewRecorder()
	handler.RefreshTokens(w, req)

	var pair services.TokenPair
	handlers.AssertJSONResponse(t, w, 200, &pair)
	assert.Equal(t, "new-access", pair.AccessToken)
	assert.Equal(t, "new-refresh", pair.RefreshToken)

	refreshCookie := cookieByName(w.Result().Cookies(), auth.RefreshTokenCookie)
	require.NotNil(t, refreshCookie)
	assert.Equal(t, "new-refresh", refreshCookie.Value)
}

func TestRefreshTokens_FromBody(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		RefreshFunc: func(ctx context.Context, presented string) (*services.TokenPair, error) {
			assert.Equal(t, "body-refresh", presented)
			return &services.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "POST", "/users/refresh-tokens", handlers.RefreshRequest{
		RefreshToken: "body-refresh",
	}), "user123")

	w := httptest.NewRecorder()
	handler.RefreshTokens(w, req)

	handlers.AssertJSONResponse(t, w, 200, nil)
}

func TestRefreshTokens_Missing(t *testing.T) {
	handler := newUserHandler(&handlers.MockUserService{})
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "POST", "/users/refresh-tokens", nil), "user123")

	w := httptest.NewRecorder()
	handler.RefreshTokens(w, req)

	handlers.AssertErrorResponse(t, w, 401, "Refresh token is missing")
}

func TestRefreshTokens_Rejected(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		RefreshFunc: func(ctx context.Context, presented string) (*services.TokenPair, error) {
			return nil, models.ErrUnauthorized
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "POST", "/users/refresh-tokens", nil), "user123")
	req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookie, Value: "stale-refresh"})

	w := httptest.NewRecorder()
	handler.RefreshTokens(w, req)

	handlers.AssertErrorResponse(t, w, 401, "Invalid refresh token")
}

// ============================================================================
// Profile
// ============================================================================

func TestGetProfile_Success(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		GetProfileFunc: func(ctx context.Context, userID string) (*services.ProfileResponse, error) {
			return &services.ProfileResponse{ID: userID, Username: "alice1", Email: "alice@example.com"}, nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "GET", "/users/profile", nil), "user123")

	w := httptest.NewRecorder()
	handler.GetProfile(w, req)

	var profile services.ProfileResponse
	handlers.AssertJSONResponse(t, w, 200, &profile)
	assert.Equal(t, "user123", profile.ID)
}

func TestGetProfile_Unauthenticated(t *testing.T) {
	handler := newUserHandler(&handlers.MockUserService{})
	req := handlers.NewTestRequest(t, "GET", "/users/profile", nil)

	w := httptest.NewRecorder()
	handler.GetProfile(w, req)

	assert.Equal(t, 401, w.Code)
}

func TestUpdateProfile_Success(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		UpdateFullNameFunc: func(ctx context.Context, userID, fullName string) (*services.ProfileResponse, error) {
			return &services.ProfileResponse{ID: userID, FullName: fullName}, nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "PATCH", "/users/profile", handlers.UpdateProfileRequest{
		FullName: "Alice Cooper",
	}), "user123")

	w := httptest.NewRecorder()
	handler.UpdateProfile(w, req)

	var profile services.ProfileResponse
	handlers.AssertJSONResponse(t, w, 200, &profile)
	assert.Equal(t, "Alice Cooper", profile.FullName)
}

// ============================================================================
// Password management
// ============================================================================

func TestChangePassword_Success(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ChangePasswordFunc: func(ctx context.Context, userID, currentPassword, newPassword string) error {
			assert.Equal(t, "OldPassword123", currentPassword)
			assert.Equal(t, "NewPassword456", newPassword)
			return nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "PATCH", "/users/change-password", handlers.ChangePasswordRequest{
		OldPassword: "OldPassword123",
		NewPassword: "NewPassword456",
	}), "user123")

	w := httptest.NewRecorder()
	handler.ChangePassword(w, req)

	handlers.AssertJSONResponse(t, w, 200, nil)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ChangePasswordFunc: func(ctx context.Context, userID, currentPassword, newPassword string) error {
			return models.ErrUnauthorized
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "PATCH", "/users/change-password", handlers.ChangePasswordRequest{
		OldPassword: "NotTheOldPassword",
		NewPassword: "NewPassword456",
	}), "user123")

	w := httptest.NewRecorder()
	handler.ChangePassword(w, req)

	handlers.AssertErrorResponse(t, w, 401, "Invalid old password")
}

// ============================================================================
// Email verification
// ============================================================================

func TestVerifyEmail_Success(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		VerifyEmailFunc: func(ctx context.Context, token string) (*services.ProfileResponse, error) {
			assert.Equal(t, "good-token", token)
			return &services.ProfileResponse{ID: "user123", IsEmailVerified: true}, nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "GET", "/users/verify-email?token=good-token", nil)

	w := httptest.NewRecorder()
	handler.VerifyEmail(w, req)

	var profile services.ProfileResponse
	handlers.AssertJSONResponse(t, w, 200, &profile)
	assert.True(t, profile.IsEmailVerified)
}

func TestVerifyEmail_MissingToken(t *testing.T) {
	handler := newUserHandler(&handlers.MockUserService{})
	req := handlers.NewTestRequest(t, "GET", "/users/verify-email", nil)

	w := httptest.NewRecorder()
	handler.VerifyEmail(w, req)

	handlers.AssertErrorResponse(t, w, 400, "Token is required")
}

func TestVerifyEmail_InvalidToken(t *testing.T) {
	handler := newUserHandler(&handlers.MockUserService{})
	req := handlers.NewTestRequest(t, "GET", "/users/verify-email?token=bogus", nil)

	w := httptest.NewRecorder()
	handler.VerifyEmail(w, req)

	handlers.AssertErrorResponse(t, w, 400, "Invalid or expired token")
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ResendVerificationFunc: func(ctx context.Context, userID string) error {
			return models.ErrBadRequest
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "GET", "/users/resend-verification", nil), "user123")

	w := httptest.NewRecorder()
	handler.ResendVerification(w, req)

	handlers.AssertErrorResponse(t, w, 400, "Email is already verified")
}

// ============================================================================
// Password reset
// ============================================================================

func TestForgetPassword_Success(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ForgetPasswordFunc: func(ctx context.Context, email string) error {
			assert.Equal(t, "alice@example.com", email)
			return nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "POST", "/users/forget-password", handlers.ForgetPasswordRequest{
		Email: "alice@example.com",
	})

	w := httptest.NewRecorder()
	handler.ForgetPassword(w, req)

	handlers.AssertJSONResponse(t, w, 200, nil)
}

func TestForgetPassword_UnknownEmail(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ForgetPasswordFunc: func(ctx context.Context, email string) error {
			return models.ErrNotFound
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "POST", "/users/forget-password", handlers.ForgetPasswordRequest{
		Email: "nobody@example.com",
	})

	w := httptest.NewRecorder()
	handler.ForgetPassword(w, req)

	handlers.AssertErrorResponse(t, w, 404, "User not found")
}

func TestResetPassword_Success(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ResetPasswordFunc: func(ctx context.Context, token, newPassword string) error {
			assert.Equal(t, "reset-token", token)
			assert.Equal(t, "NewPassword456", newPassword)
			return nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "POST", "/users/reset-password?token=reset-token", handlers.ResetPasswordRequest{
		NewPassword: "NewPassword456",
	})

	w := httptest.NewRecorder()
	handler.ResetPassword(w, req)

	handlers.AssertJSONResponse(t, w, 200, nil)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	mockSvc := &handlers.MockUserService{
		ResetPasswordFunc: func(ctx context.Context, token, newPassword string) error {
			return models.ErrTokenNotFound
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.NewTestRequest(t, "POST", "/users/reset-password?token=bogus", handlers.ResetPasswordRequest{
		NewPassword: "NewPassword456",
	})

	w := httptest.NewRecorder()
	handler.ResetPassword(w, req)

	handlers.AssertErrorResponse(t, w, 400, "Invalid or expired token")
}

func TestResetPassword_MissingToken(t *testing.T) {
	handler := newUserHandler(&handlers.MockUserService{})
	req := handlers.NewTestRequest(t, "POST", "/users/reset-password", handlers.ResetPasswordRequest{
		NewPassword: "NewPassword456",
	})

	w := httptest.NewRecorder()
	handler.ResetPassword(w, req)

	handlers.AssertErrorResponse(t, w, 400, "Token is required")
}

// ============================================================================
// Account deletion
// ============================================================================

func TestDeleteAccount_Success(t *testing.T) {
	var deleted string
	mockSvc := &handlers.MockUserService{
		DeleteAccountFunc: func(ctx context.Context, userID string) error {
			deleted = userID
			return nil
		},
	}

	handler := newUserHandler(mockSvc)
	req := handlers.WithAuthContext(handlers.NewTestRequest(t, "DELETE", "/users/delete", nil), "user123")

	w := httptest.NewRecorder()
	handler.DeleteAccount(w, req)

	handlers.AssertJSONResponse(t, w, 200, nil)
	assert.Equal(t, "user123", deleted)

	accessCookie := cookieByName(w.Result().Cookies(), auth.AccessTokenCookie)
	require.NotNil(t, accessCookie)
	assert.Negative(t, accessCookie.MaxAge)
}
