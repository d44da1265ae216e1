package models

import (
	"time"
)

// User is the credential record: one row per identity. Username and email
// are unique and immutable after creation. PasswordHash is always a bcrypt
// digest, never the plaintext.
type User struct {
	ID              string
	Username        string
	FullName        string
	Email           string
	PasswordHash    string
	IsEmailVerified bool

	// RefreshToken holds the single active refresh token, or nil when
	// logged out. Issuing a new one invalidates the prior value.
	RefreshToken *string

	// Ephemeral token pairs: either both fields are nil, or the token has
	// a future expiry. Consuming a token clears both atomically.
	EmailVerificationToken       *string
	EmailVerificationTokenExpiry *time.Time
	PasswordResetToken           *string
	PasswordResetTokenExpiry     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
