//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

// TokenType distinguishes the single-use token flows sharing one table.
type TokenType string

const (
	TokenTypeVerification  TokenType = "VERIFICATION"
	TokenTypePasswordReset TokenType = "PASSWORD_RESET"
	TokenTypeTwoFactor     TokenType = "TWO_FACTOR"
)

// Valid reports whether the token type is supported.
func (t TokenType) Valid() bool {
	switch t {
	case TokenTypeVerification, TokenTypePasswordReset, TokenTypeTwoFactor:
		return true
	default:
		return false
	}
}

// ParseTokenType normalizes a token type string and reports whether it is supported.
func ParseTokenType(value string) (TokenType, bool) {
	t := TokenType(strings.ToUpper(strings.TrimSpace(value)))
	if t.Valid() {
		return t, true
	}
	return "", false
}

// Token is a single-use verification, password-reset, or two-factor token.
// At most one live token exists per (email, type): generating a new one
// deletes any prior token for that pair. Tokens are consumed on successful
// validation and are never updated in place. Expiry is checked lazily by
// wall-clock comparison at validation time.
type Token struct {
	ID        string    `json:"id"         db:"id"`
	Email     string    `json:"email"      db:"email"`
	Token     string    `json:"token"      db:"token"`
	Type      TokenType `json:"type"       db:"type"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
