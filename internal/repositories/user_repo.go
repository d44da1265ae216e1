package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spendtrail/spendtrail/internal/database"
	"github.com/spendtrail/spendtrail/internal/models"
)

const userColumns = `id, username, full_name, email, password_hash, is_email_verified,
		refresh_token, email_verification_token, email_verification_expiry,
		password_reset_token, password_reset_expiry, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning user rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Username, &user.FullName, &user.Email,
		&user.PasswordHash, &user.IsEmailVerified,
		&user.RefreshToken,
		&user.EmailVerificationToken, &user.EmailVerificationTokenExpiry,
		&user.PasswordResetToken, &user.PasswordResetTokenExpiry,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, full_name, email, password_hash, is_email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	createdUser, err := scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.FullName, user.Email,
		user.PasswordHash, user.IsEmailVerified,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	return createdUser, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

// GetByUsernameOrEmail resolves a login identifier. Either argument may be
// empty; a row matches if it equals whichever was provided.
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
	`
	return scanUserRow(r.pool.QueryRow(ctx, query, username, email))
}

func (r *UserRepository) UpdateFullName(ctx context.Context, id, fullName string) (*models.User, error) {
	query := `
		UPDATE users SET full_name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query, fullName, id))
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetRefreshToken stores the caller's single active refresh token. Passing
// nil clears the slot, which revokes the session on the next refresh attempt.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	query := `UPDATE users SET refresh_token = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, token, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetEphemeralToken writes the verification or reset token pair onto the user
// record, overwriting any previous token of the same purpose.
func (r *UserRepository) SetEphemeralToken(ctx context.Context, id string, purpose models.TokenPurpose, token string, expiry time.Time) error {
	var query string
	switch purpose {
	case models.PurposeVerifyEmail:
		query = `UPDATE users SET email_verification_token = $1, email_verification_expiry = $2, updated_at = NOW() WHERE id = $3`
	case models.PurposePasswordReset:
		query = `UPDATE users SET password_reset_token = $1, password_reset_expiry = $2, updated_at = NOW() WHERE id = $3`
	default:
		return fmt.Errorf("unknown token purpose %q", purpose)
	}

	result, err := r.pool.Exec(ctx, query, token, expiry, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken marks the owning user verified and clears the
// token pair in a single conditional update, so a token can be redeemed at
// most once even under concurrent requests.
func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		UPDATE users
		SET is_email_verified = TRUE,
		    email_verification_token = NULL,
		    email_verification_expiry = NULL,
		    updated_at = NOW()
		WHERE email_verification_token = $1
		  AND email_verification_expiry > NOW()
		RETURNING ` + userColumns

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrTokenNotFound
		}
		return nil, err
	}

	return user, nil
}

// ConsumePasswordResetToken installs the new password hash and clears the
// reset token pair in one conditional update. The session slot is cleared
// too, so any outstanding refresh token dies with the old password.
func (r *UserRepository) ConsumePasswordResetToken(ctx context.Context, token, passwordHash string) (*models.User, error) {
	query := `
		UPDATE users
		SET password_hash = $1,
		    password_reset_token = NULL,
		    password_reset_expiry = NULL,
		    refresh_token = NULL,
		    updated_at = NOW()
		WHERE password_reset_token = $2
		  AND password_reset_expiry > NOW()
		RETURNING ` + userColumns

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, passwordHash, token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrTokenNotFound
		}
		return nil, err
	}

	return user, nil
}

// ClearExpiredEphemeralTokens nulls out verification and reset token pairs
// whose expiry has passed. Returns the number of rows touched.
func (r *UserRepository) ClearExpiredEphemeralTokens(ctx context.Context) (int64, error) {
	query := `
		UPDATE users
		SET email_verification_token = CASE WHEN email_verification_expiry <= NOW() THEN NULL ELSE email_verification_token END,
		    email_verification_expiry = CASE WHEN email_verification_expiry <= NOW() THEN NULL ELSE email_verification_expiry END,
		    password_reset_token = CASE WHEN password_reset_expiry <= NOW() THEN NULL ELSE password_reset_token END,
		    password_reset_expiry = CASE WHEN password_reset_expiry <= NOW() THEN NULL ELSE password_reset_expiry END
		WHERE email_verification_expiry <= NOW() OR password_reset_expiry <= NOW()
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
