package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims represents the JWT claims issued by the identity provider.
// The mobile app obtains tokens through its own OAuth flow; the backend only
// verifies them against the provider's JWKS endpoint.
type AuthClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// GetUserID returns the user ID from the subject claim
func (c *AuthClaims) GetUserID() string {
	return c.Subject
}
