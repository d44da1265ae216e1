package services

import (
	"context"
	"time"

	"github.com/spendtrail/spendtrail/internal/auth"
	"github.com/spendtrail/spendtrail/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	CreateFunc                    func(ctx context.Context, user *models.User) (*models.User, error)
	GetByIDFunc                   func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc                func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameOrEmailFunc      func(ctx context.Context, username, email string) (*models.User, error)
	UpdateFullNameFunc            func(ctx context.Context, id, fullName string) (*models.User, error)
	UpdatePasswordHashFunc        func(ctx context.Context, id, passwordHash string) error
	SetRefreshTokenFunc           func(ctx context.Context, id string, token *string) error
	ConsumeVerificationTokenFunc  func(ctx context.Context, token string) (*models.User, error)
	ConsumePasswordResetTokenFunc func(ctx context.Context, token, passwordHash string) (*models.User, error)
	DeleteFunc                    func(ctx context.Context, id string) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if m.GetByUsernameOrEmailFunc != nil {
		return m.GetByUsernameOrEmailFunc(ctx, username, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdateFullName(ctx context.Context, id, fullName string) (*models.User, error) {
	if m.UpdateFullNameFunc != nil {
		return m.UpdateFullNameFunc(ctx, id, fullName)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	if m.SetRefreshTokenFunc != nil {
		return m.SetRefreshTokenFunc(ctx, id, token)
	}
	return nil
}

func (m *MockUserRepository) ConsumeVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if m.ConsumeVerificationTokenFunc != nil {
		return m.ConsumeVerificationTokenFunc(ctx, token)
	}
	return nil, models.ErrTokenNotFound
}

func (m *MockUserRepository) ConsumePasswordResetToken(ctx context.Context, token, passwordHash string) (*models.User, error) {
	if m.ConsumePasswordResetTokenFunc != nil {
		return m.ConsumePasswordResetTokenFunc(ctx, token, passwordHash)
	}
	return nil, models.ErrTokenNotFound
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	IssueFunc func(ctx context.Context, user *models.User, purpose models.TokenPurpose) error
}

func (m *MockTokenIssuer) Issue(ctx context.Context, user *models.User, purpose models.TokenPurpose) error {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, user, purpose)
	}
	return nil
}

// MockMailer implements Mailer for testing
type MockMailer struct {
	SendTokenEmailFunc func(ctx context.Context, email string, purpose models.TokenPurpose, token string) error
}

func (m *MockMailer) SendTokenEmail(ctx context.Context, email string, purpose models.TokenPurpose, token string) error {
	if m.SendTokenEmailFunc != nil {
		return m.SendTokenEmailFunc(ctx, email, purpose, token)
	}
	return nil
}

// MockEphemeralTokenRepository implements EphemeralTokenRepository for testing
type MockEphemeralTokenRepository struct {
	SetEphemeralTokenFunc func(ctx context.Context, id string, purpose models.TokenPurpose, token string, expiry time.Time) error
}

func (m *MockEphemeralTokenRepository) SetEphemeralToken(ctx context.Context, id string, purpose models.TokenPurpose, token string, expiry time.Time) error {
	if m.SetEphemeralTokenFunc != nil {
		return m.SetEphemeralTokenFunc(ctx, id, purpose, token, expiry)
	}
	return nil
}

// MockExpenseRepository implements ExpenseRepository for testing
type MockExpenseRepository struct {
	CreateFunc     func(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	GetByIDFunc    func(ctx context.Context, userID, id string) (*models.Expense, error)
	ListByUserFunc func(ctx context.Context, userID string) ([]*models.Expense, error)
	UpdateFunc     func(ctx context.Context, userID, id string, expense *models.Expense) (*models.Expense, error)
	DeleteFunc     func(ctx context.Context, userID, id string) error
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, expense)
	}
	return nil, models.ErrInternalServer
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, userID, id string) (*models.Expense, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockExpenseRepository) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Expense{}, nil
}

func (m *MockExpenseRepository) Update(ctx context.Context, userID, id string, expense *models.Expense) (*models.Expense, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, id, expense)
	}
	return nil, models.ErrInternalServer
}

func (m *MockExpenseRepository) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

// NewTestUser creates a user with sensible defaults for tests
func NewTestUser(id, username, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:              id,
		Username:        username,
		FullName:        "Test User",
		Email:           email,
		PasswordHash:    "$2a$12$abcdefghijklmnopqrstuvwxyz012345678901234567890123456",
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(
		"test-access-secret-0123456789abcdef",
		"test-refresh-secret-0123456789abcdef",
		15*time.Minute,
		7*24*time.Hour,
	)
}
