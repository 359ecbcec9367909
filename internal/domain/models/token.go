package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an issued access token.
const TokenTTL = 4 * time.Hour

// Claims is the payload of an issued token:
// id (user id), sub and email (user email), jti (nonce), iat, exp and optional iss/aud.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenID returns the per-issuance nonce (jti).
func (c *Claims) TokenID() string {
	return c.ID
}

type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}
