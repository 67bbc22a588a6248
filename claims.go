package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims is the read side of a validated token. Claims are read-only
// once a token is signed, changing anything means issuing a new token.
type AuthClaims interface {
	Subject() string
	Email() string
	Name() string
	TokenID() string
	Issuer() string
	Audience() []string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set embedded in access and refresh tokens
type JWTClaims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"name,omitempty"`
	UserEmail   string `json:"email,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Name returns the display name claim
func (c *JWTClaims) Name() string {
	return c.DisplayName
}

// TokenID returns the jti claim
func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Issuer returns the iss claim
func (c *JWTClaims) Issuer() string {
	return c.RegisteredClaims.Issuer
}

// Audience returns the aud claim
func (c *JWTClaims) Audience() []string {
	return c.RegisteredClaims.Audience
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID fills the jti claim with a fresh nonce when absent so two
// otherwise identical tokens never collide.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
