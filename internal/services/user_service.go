package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spendtrail/spendtrail/internal/auth"
	"github.com/spendtrail/spendtrail/internal/models"
	pkgauth "github.com/spendtrail/spendtrail/pkg/auth"
	"github.com/spendtrail/spendtrail/pkg/logger"
)

// UserRepository defines the persistence operations the user service needs
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	UpdateFullName(ctx context.Context, id, fullName string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id string, token *string) error
	ConsumeVerificationToken(ctx context.Context, token string) (*models.User, error)
	ConsumePasswordResetToken(ctx context.Context, token, passwordHash string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// TokenIssuer issues verification and password-reset links.
type TokenIssuer interface {
	Issue(ctx context.Context, user *models.User, purpose models.TokenPurpose) error
}

// UserService handles account lifecycle business logic
type UserService struct {
	repo     UserRepository
	verifier TokenIssuer
	tm       *auth.TokenManager
	logger   *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, verifier TokenIssuer, tm *auth.TokenManager, logger *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		verifier: verifier,
		tm:       tm,
		logger:   logger,
	}
}

// TokenPair is a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ProfileResponse is the redacted view of a user returned over HTTP. The
// password hash, the session slot and the ephemeral token fields never leave
// the service layer.
type ProfileResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

func userModelToProfile(user *models.User) *ProfileResponse {
	return &ProfileResponse{
		ID:              user.ID,
		Username:        user.Username,
		FullName:        user.FullName,
		Email:           user.Email,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       user.UpdatedAt.Format(time.RFC3339),
	}
}

// Register creates a new account and kicks off email verification.
func (s *UserService) Register(ctx context.Context, username, fullName, email, password string) (*ProfileResponse, error) {
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Username:     username,
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("registration failed: username or email already taken",
				slog.String("email", logger.SanitizedEmail(email)))
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.verifier.Issue(ctx, createdUser, models.PurposeVerifyEmail); err != nil {
		s.logger.Error("failed to issue verification email on registration",
			slog.String("user_id", createdUser.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", createdUser.ID))

	return userModelToProfile(createdUser), nil
}

// Login authenticates by username or email, issues a token pair, and stores
// the refresh token as the account's single active session.
func (s *UserService) Login(ctx context.Context, username, email, password string) (*TokenPair, *ProfileResponse, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: user does not exist")
			return nil, nil, models.ErrNotFound
		}
		s.logger.Error("failed to look up user for login", slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials", slog.String("user_id", user.ID))
		return nil, nil, models.ErrUnauthorized
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return pair, userModelToProfile(user), nil
}

// Logout clears the stored refresh token so the current session cannot be
// renewed. Outstanding access tokens stay valid until they expire.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetRefreshToken(ctx, userID, nil); err != nil {
		s.logger.Error("failed to clear refresh token", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user logged out", slog.String("user_id", userID))
	return nil
}

// Refresh rotates the session. The presented token must carry a valid
// refresh signature and match the stored session slot exactly; anything else
// is rejected as unauthorized.
func (s *UserService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented = strings.TrimSpace(presented); presented == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateToken(presented, models.TokenTypeRefresh)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return nil, models.ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found for token refresh", slog.String("user_id", claims.UserID))
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user for token refresh", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// A logged-out or already-rotated session has a different (or empty)
	// slot, so a stolen old token cannot be replayed.
	if user.RefreshToken == nil || *user.RefreshToken != presented {
		s.logger.Info("refresh token does not match active session", slog.String("user_id", user.ID))
		return nil, models.ErrUnauthorized
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session refreshed", slog.String("user_id", user.ID))
	return pair, nil
}

// issueSession generates a token pair and persists the refresh half as the
// account's single active session.
func (s *UserService) issueSession(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := s.tm.GenerateAccessToken(user.ID)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(user.ID)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.repo.SetRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		s.logger.Error("failed to persist refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// GetProfile returns the redacted profile for the given user.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return userModelToProfile(user), nil
}

// UpdateFullName changes the display name on the account.
func (s *UserService) UpdateFullName(ctx context.Context, userID, fullName string) (*ProfileResponse, error) {
	user, err := s.repo.UpdateFullName(ctx, userID, strings.TrimSpace(fullName))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update full name", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("full name updated", slog.String("user_id", userID))
	return userModelToProfile(user), nil
}

// ChangePassword verifies the current password before installing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user for password change", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		s.logger.Info("password change rejected: current password incorrect", slog.String("user_id", userID))
		return models.ErrUnauthorized
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePasswordHash(ctx, userID, hashedPassword); err != nil {
		s.logger.Error("failed to update password hash", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password changed", slog.String("user_id", userID))
	return nil
}

// VerifyEmail redeems a verification token. A wrong, expired, or already
// consumed token all surface as ErrTokenNotFound.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*ProfileResponse, error) {
	if token == "" {
		return nil, models.ErrTokenNotFound
	}

	user, err := s.repo.ConsumeVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Info("verification token rejected")
			return nil, models.ErrTokenNotFound
		}
		s.logger.Error("failed to consume verification token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("email verified", slog.String("user_id", user.ID))
	return userModelToProfile(user), nil
}

// ResendVerification issues a fresh verification link, replacing any
// outstanding one.
func (s *UserService) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user for verification resend", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if user.IsEmailVerified {
		return models.ErrBadRequest
	}

	if err := s.verifier.Issue(ctx, user, models.PurposeVerifyEmail); err != nil {
		return models.ErrInternalServer
	}

	return nil
}

// ForgetPassword issues a password-reset link for the given email.
func (s *UserService) ForgetPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				slog.String("email", logger.SanitizedEmail(email)))
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up user for password reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.verifier.Issue(ctx, user, models.PurposePasswordReset); err != nil {
		return models.ErrInternalServer
	}

	return nil
}

// ResetPassword redeems a reset token and installs the new password. The
// active session is revoked as part of the same update.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return models.ErrTokenNotFound
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	user, err := s.repo.ConsumePasswordResetToken(ctx, token, hashedPassword)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Info("password reset token rejected")
			return models.ErrTokenNotFound
		}
		s.logger.Error("failed to consume password reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset", slog.String("user_id", user.ID))
	return nil
}

// DeleteAccount removes the user and, via the schema's cascade, everything
// they own.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("account deleted", slog.String("user_id", userID))
	return nil
}
