package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spendtrail/spendtrail/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUserFetcher implements UserFetcher for testing
type mockUserFetcher struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockUserFetcher) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func newGateTestServer(t *testing.T, tm *TokenManager, users UserFetcher) http.Handler {
	t.Helper()
	return Authenticator(tm, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		require.NotNil(t, user)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthenticator_MissingToken(t *testing.T) {
	tm := newTestTokenManager()
	handler := newGateTestServer(t, tm, &mockUserFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_BearerHeader(t *testing.T) {
	tm := newTestTokenManager()
	users := &mockUserFetcher{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "alice1"}, nil
		},
	}
	handler := newGateTestServer(t, tm, users)

	token, err := tm.GenerateAccessToken("user123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticator_Cookie(t *testing.T) {
	tm := newTestTokenManager()
	users := &mockUserFetcher{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
	}
	handler := newGateTestServer(t, tm, users)

	token, err := tm.GenerateAccessToken("user123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticator_CookieTakesPrecedenceOverHeader(t *testing.T) {
	tm := newTestTokenManager()

	var resolvedID string
	users := &mockUserFetcher{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			resolvedID = id
			return &models.User{ID: id}, nil
		},
	}
	handler := newGateTestServer(t, tm, users)

	cookieToken, err := tm.GenerateAccessToken("cookie-user")
	require.NoError(t, err)
	headerToken, err := tm.GenerateAccessToken("header-user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+headerToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cookie-user", resolvedID)
}

func TestAuthenticator_MalformedAuthorizationHeader(t *testing.T) {
	tm := newTestTokenManager()
	handler := newGateTestServer(t, tm, &mockUserFetcher{})

	for _, header := range []string{"Bearer", "Basic abc123", "bearer token"} {
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q should be rejected", header)
	}
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	expired := NewTokenManager(
		"test-access-secret-0123456789abcdef",
		"test-refresh-secret-0123456789abcdef",
		-1*time.Minute,
		-1*time.Minute,
	)
	tm := newTestTokenManager()
	handler := newGateTestServer(t, tm, &mockUserFetcher{})

	token, err := expired.GenerateAccessToken("user123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_RefreshTokenRejected(t *testing.T) {
	tm := newTestTokenManager()
	handler := newGateTestServer(t, tm, &mockUserFetcher{})

	token, err := tm.GenerateRefreshToken("user123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_UserVanished(t *testing.T) {
	tm := newTestTokenManager()
	users := &mockUserFetcher{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}
	handler := newGateTestServer(t, tm, users)

	token, err := tm.GenerateAccessToken("gone-user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticator_UniformFailureResponse(t *testing.T) {
	tm := newTestTokenManager()
	handler := newGateTestServer(t, tm, &mockUserFetcher{})

	refreshToken, err := tm.GenerateRefreshToken("user123")
	require.NoError(t, err)
	vanishedToken, err := tm.GenerateAccessToken("gone-user")
	require.NoError(t, err)

	cases := []struct {
		name    string
		prepare func(req *http.Request)
	}{
		{"no token", func(req *http.Request) {}},
		{"garbage token", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer not-a-jwt")
		}},
		{"refresh token at the gate", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+refreshToken)
		}},
		{"user vanished", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+vanishedToken)
		}},
	}

	var bodies []string
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		tc.prepare(req)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.name)
		bodies = append(bodies, rec.Body.String())
	}

	// Every rejection reads identically so callers cannot probe which
	// check failed.
	for i := 1; i < len(bodies); i++ {
		assert.Equal(t, bodies[0], bodies[i])
	}
}

func TestGetUserFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	assert.Nil(t, GetUserFromContext(req))
}
