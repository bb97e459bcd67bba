package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Subject is the account data placed in a session token.
type Subject struct {
	ID       string
	Username string
	Email    string
}

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the account id the token was issued for.
func (c *SessionClaims) UserID() string {
	return c.Subject
}

type claimsContextKey struct{}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*SessionClaims)
	return claims, ok && claims != nil
}
