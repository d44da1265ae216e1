package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spendtrail/spendtrail/internal/models"
)

// EphemeralTokenTTL is how long verification and reset links stay valid.
const EphemeralTokenTTL = 1 * time.Hour

// EphemeralTokenRepository defines the user-record token slots the
// verification service writes to.
type EphemeralTokenRepository interface {
	SetEphemeralToken(ctx context.Context, id string, purpose models.TokenPurpose, token string, expiry time.Time) error
}

// VerificationService issues single-use verification and password-reset
// tokens and mails the redemption link. Issuing overwrites any previous
// outstanding token of the same purpose, so only the latest link works.
type VerificationService struct {
	repo   EphemeralTokenRepository
	mailer Mailer
	logger *slog.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(repo EphemeralTokenRepository, mailer Mailer, logger *slog.Logger) *VerificationService {
	return &VerificationService{
		repo:   repo,
		mailer: mailer,
		logger: logger,
	}
}

// Issue stores a fresh token on the user record and emails the link.
func (s *VerificationService) Issue(ctx context.Context, user *models.User, purpose models.TokenPurpose) error {
	token := uuid.New().String()
	expiry := time.Now().Add(EphemeralTokenTTL)

	if err := s.repo.SetEphemeralToken(ctx, user.ID, purpose, token, expiry); err != nil {
		s.logger.Error("failed to store ephemeral token",
			slog.String("user_id", user.ID),
			slog.String("purpose", string(purpose)),
			slog.Any("error", err))
		return fmt.Errorf("failed to store token: %w", err)
	}

	if err := s.mailer.SendTokenEmail(ctx, user.Email, purpose, token); err != nil {
		s.logger.Error("failed to send token email",
			slog.String("user_id", user.ID),
			slog.String("purpose", string(purpose)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("ephemeral token issued",
		slog.String("user_id", user.ID),
		slog.String("purpose", string(purpose)))

	return nil
}
