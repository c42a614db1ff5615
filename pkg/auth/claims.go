package auth

import (
	"time"

	"github.com/angelmondragon/pim-console/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of the upstream API's JWT payload the console reads.
// Access tokens carry the user's role; refresh tokens carry only identity and expiry.
type TokenClaims struct {
	UserID    int            `json:"user_id"`
	Role      enums.UserRole `json:"role,omitempty"`
	TokenType string         `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// Expired reports whether the token's exp is at or before now. Tokens without
// exp never expire.
func (c *TokenClaims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.After(now)
}

// Actor is the signed-in console user as reported by the login flow.
type Actor struct {
	ID       int            `json:"id"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Role     enums.UserRole `json:"role"`
	Picture  string         `json:"picture,omitempty"`
}
