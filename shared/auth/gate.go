package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnauthorized is the only error the gate returns to callers.
var ErrUnauthorized = errors.New("unauthorized")

var (
	errMissingHeader = errors.New("missing authorization header")
	errInvalidScheme = errors.New("invalid authorization header format")
	errSessionEnded  = errors.New("session is no longer active")
)

// SessionValidator reports whether a token's session is still current for the account.
type SessionValidator interface {
	IsSessionActive(ctx context.Context, userID, sessionID string) (bool, error)
}

// Gate turns an Authorization header into verified session claims.
type Gate struct {
	authenticator *JWTAuthenticator
	sessions      SessionValidator
	logger        *zerolog.Logger
}

// NewGate creates a gate. sessions may be nil, in which case any unexpired token is accepted.
func NewGate(authenticator *JWTAuthenticator, sessions SessionValidator, logger *zerolog.Logger) *Gate {
	return &Gate{
		authenticator: authenticator,
		sessions:      sessions,
		logger:        logger,
	}
}

// Authorize verifies header and returns its claims, or ErrUnauthorized.
func (g *Gate) Authorize(ctx context.Context, header string) (*SessionClaims, error) {
	claims, err := g.authorize(ctx, header)
	if err != nil {
		g.logger.Debug().Err(err).Msg("authorization rejected")
		return nil, ErrUnauthorized
	}

	return claims, nil
}

func (g *Gate) authorize(ctx context.Context, header string) (*SessionClaims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}

	claims, err := g.authenticator.VerifySessionToken(token)
	if err != nil {
		return nil, err
	}

	if g.sessions == nil {
		return claims, nil
	}

	active, err := g.sessions.IsSessionActive(ctx, claims.UserID(), claims.ID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, errSessionEnded
	}

	return claims, nil
}

// BearerToken extracts the token from a "Bearer <token>" header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errInvalidScheme
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errInvalidScheme
	}

	return token, nil
}
