package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spendtrail/spendtrail/internal/models"
)

// TokenManager issues and validates signed access and refresh tokens.
// The two token classes are signed with distinct secrets, so an access
// token can never pass verification as a refresh token or vice versa.
type TokenManager struct {
	accessSecret       string
	refreshSecret      string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:       accessSecret,
		refreshSecret:      refreshSecret,
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

// AccessTokenExpiry returns the configured access token lifetime.
func (tm *TokenManager) AccessTokenExpiry() time.Duration {
	return tm.accessTokenExpiry
}

// RefreshTokenExpiry returns the configured refresh token lifetime.
func (tm *TokenManager) RefreshTokenExpiry() time.Duration {
	return tm.refreshTokenExpiry
}

// GenerateAccessToken creates a short-lived access token bound to userID.
func (tm *TokenManager) GenerateAccessToken(userID string) (string, error) {
	return tm.generate(userID, models.TokenTypeAccess, tm.accessSecret, tm.accessTokenExpiry)
}

// GenerateRefreshToken creates a long-lived refresh token bound to userID.
func (tm *TokenManager) GenerateRefreshToken(userID string) (string, error) {
	return tm.generate(userID, models.TokenTypeRefresh, tm.refreshSecret, tm.refreshTokenExpiry)
}

func (tm *TokenManager) generate(userID, tokenType, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		Type:   tokenType,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", models.ErrInternalServer
	}

	return tokenString, nil
}

// ValidateToken verifies a token of the given type and returns its claims.
// Fails with models.ErrTokenExpired past expiry, models.ErrTokenInvalid on
// a bad signature, malformed fields, or a token-type mismatch.
func (tm *TokenManager) ValidateToken(tokenString, tokenType string) (*models.TokenClaims, error) {
	secret := tm.accessSecret
	if tokenType == models.TokenTypeRefresh {
		secret = tm.refreshSecret
	}

	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}

	if claims.Type != tokenType || claims.UserID == "" {
		return nil, models.ErrTokenInvalid
	}

	return claims, nil
}
