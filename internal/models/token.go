package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators embedded in JWT claims.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPurpose selects which ephemeral token pair an operation targets.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify"
	PurposePasswordReset TokenPurpose = "reset"
)

type TokenClaims struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
