package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spendtrail/spendtrail/internal/auth"
	"github.com/spendtrail/spendtrail/internal/models"
	"github.com/spendtrail/spendtrail/internal/services"
	pkghttp "github.com/spendtrail/spendtrail/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds a resolved user to request context for testing authenticated endpoints
func WithAuthContext(req *http.Request, userID string) *http.Request {
	user := &models.User{
		ID:       userID,
		Username: "testuser",
		Email:    "test@example.com",
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, user)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes the envelope's data field
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, data interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	var envelope struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	assert.NoError(t, err, "Failed to decode response JSON")
	assert.Equal(t, expectedStatus, envelope.Status, "Envelope status mismatch")
	assert.NotEmpty(t, envelope.Message, "Envelope message should not be empty")

	if data != nil {
		err := json.Unmarshal(envelope.Data, data)
		assert.NoError(t, err, "Failed to decode envelope data")
	}
}

// AssertErrorResponse checks that response is a valid error envelope
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedStatus, resp.Status, "Envelope status mismatch")
	if expectedMessage != "" {
		assert.Equal(t, expectedMessage, resp.Message, "Error message mismatch")
	}
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	RegisterFunc           func(ctx context.Context, username, fullName, email, password string) (*services.ProfileResponse, error)
	LoginFunc              func(ctx context.Context, username, email, password string) (*services.TokenPair, *services.ProfileResponse, error)
	LogoutFunc             func(ctx context.Context, userID string) error
	RefreshFunc            func(ctx context.Context, presented string) (*services.TokenPair, error)
	GetProfileFunc         func(ctx context.Context, userID string) (*services.ProfileResponse, error)
	UpdateFullNameFunc     func(ctx context.Context, userID, fullName string) (*services.ProfileResponse, error)
	ChangePasswordFunc     func(ctx context.Context, userID, currentPassword, newPassword string) error
	VerifyEmailFunc        func(ctx context.Context, token string) (*services.ProfileResponse, error)
	ResendVerificationFunc func(ctx context.Context, userID string) error
	ForgetPasswordFunc     func(ctx context.Context, email string) error
	ResetPasswordFunc      func(ctx context.Context, token, newPassword string) error
	DeleteAccountFunc      func(ctx context.Context, userID string) error
}

func (m *MockUserService) Register(ctx context.Context, username, fullName, email, password string) (*services.ProfileResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, fullName, email, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) Login(ctx context.Context, username, email, password string) (*services.TokenPair, *services.ProfileResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, email, password)
	}
	return nil, nil, models.ErrUnauthorized
}

func (m *MockUserService) Logout(ctx context.Context, userID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID)
	}
	return nil
}

func (m *MockUserService) Refresh(ctx context.Context, presented string) (*services.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, presented)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*services.ProfileResponse, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) UpdateFullName(ctx context.Context, userID, fullName string) (*services.ProfileResponse, error) {
	if m.UpdateFullNameFunc != nil {
		return m.UpdateFullNameFunc(ctx, userID, fullName)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
	}
	return nil
}

func (m *MockUserService) VerifyEmail(ctx context.Context, token string) (*services.ProfileResponse, error) {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token)
	}
	return nil, models.ErrTokenNotFound
}

func (m *MockUserService) ResendVerification(ctx context.Context, userID string) error {
	if m.ResendVerificationFunc != nil {
		return m.ResendVerificationFunc(ctx, userID)
	}
	return nil
}

func (m *MockUserService) ForgetPassword(ctx context.Context, email string) error {
	if m.ForgetPasswordFunc != nil {
		return m.ForgetPasswordFunc(ctx, email)
	}
	return nil
}

func (m *MockUserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

func (m *MockUserService) DeleteAccount(ctx context.Context, userID string) error {
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, userID)
	}
	return nil
}

// MockExpenseService implements ExpenseServiceInterface for testing
type MockExpenseService struct {
	CreateFunc func(ctx context.Context, userID string, expense *models.Expense) (*models.Expense, error)
	GetFunc    func(ctx context.Context, userID, id string) (*models.Expense, error)
	ListFunc   func(ctx context.Context, userID string) ([]*models.Expense, error)
	UpdateFunc func(ctx context.Context, userID, id string, expense *models.Expense) (*models.Expense, error)
	DeleteFunc func(ctx context.Context, userID, id string) error
}

func (m *MockExpenseService) Create(ctx context.Context, userID string, expense *models.Expense) (*models.Expense, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, expense)
	}
	return nil, models.ErrInternalServer
}

func (m *MockExpenseService) Get(ctx context.Context, userID, id string) (*models.Expense, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockExpenseService) List(ctx context.Context, userID string) ([]*models.Expense, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return []*models.Expense{}, nil
}

func (m *MockExpenseService) Update(ctx context.Context, userID, id string, expense *models.Expense) (*models.Expense, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, id, expense)
	}
	return nil, models.ErrNotFound
}

func (m *MockExpenseService) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}
