// Package auth provides session-token authentication for tailingsiq-engine.
// Tokens are signed HS256 JWTs minted at login and carried in an httpOnly
// cookie; the decoded claims are the authoritative identity for the request.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClaimsKey is the context key for storing validated session claims.
const ClaimsKey contextKey = "claims"

// Claims represents the session token claims. It embeds RegisteredClaims for
// standard JWT fields (sub, iss, exp, iat) and adds the identity fields the
// authorization layer needs.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// UserID parses the subject claim as the user's UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in token subject: %w", err)
	}
	return id, nil
}

// GetClaims retrieves session claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// RequireUserIDFromContext extracts the authenticated user's UUID from
// context and returns an error if not found or invalid.
func RequireUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, fmt.Errorf("authentication required: no claims in context")
	}
	return claims.UserID()
}
