package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/repository"
	"github.com/vasapolrittideah/notes-api/shared/apperror"
	"github.com/vasapolrittideah/notes-api/shared/auth"
	"github.com/vasapolrittideah/notes-api/shared/provider"
	"github.com/vasapolrittideah/notes-api/shared/ratelimit"
	"github.com/vasapolrittideah/notes-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*Session, error)
	Login(ctx context.Context, params LoginParams) (*Session, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*Session, error)
	Logout(ctx context.Context, userID string) error
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// LoginParams defines the parameters for user login. ClientIP keys the
// failed-attempt limiter.
type LoginParams struct {
	Username string
	Password string
	ClientIP string
}

// Session is a freshly issued bearer token and the account it belongs to.
type Session struct {
	Token string
	User  *model.User
}

// GoogleTokenVerifier validates Google ID tokens.
type GoogleTokenVerifier interface {
	ValidateIDToken(ctx context.Context, idToken string) (*provider.GoogleIdentity, error)
}

const (
	minUsernameLength = 3
	maxUsernameLength = 20

	googleUsernameAttempts = 5
)

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

type authUsecase struct {
	userRepo     repository.UserRepository
	jwtAuth      *auth.JWTAuthenticator
	google       GoogleTokenVerifier
	loginLimiter ratelimit.Limiter
	tokenTTL     time.Duration
	logger       *zerolog.Logger
	settings
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	jwtAuth *auth.JWTAuthenticator,
	google GoogleTokenVerifier,
	loginLimiter ratelimit.Limiter,
	tokenTTL time.Duration,
	logger *zerolog.Logger,
	opts ...Option,
) AuthUsecase {
	if loginLimiter == nil {
		loginLimiter = ratelimit.Noop()
	}

	return &authUsecase{
		userRepo:     userRepo,
		jwtAuth:      jwtAuth,
		google:       google,
		loginLimiter: loginLimiter,
		tokenTTL:     tokenTTL,
		logger:       logger,
		settings:     newSettings(opts),
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Username:     NormalizeUsername(params.Username),
		Email:        NormalizeEmail(params.Email),
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) || errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	return u.createSession(ctx, user, false)
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*Session, error) {
	if u.limited(ctx, params.ClientIP) {
		return nil, apperror.ErrTooManyAttempts
	}

	user, err := u.userRepo.GetUserByUsername(ctx, NormalizeUsername(params.Username))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			u.registerFailure(ctx, params.ClientIP)
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		u.registerFailure(ctx, params.ClientIP)
		return nil, ErrInvalidCredentials
	}

	if err := u.loginLimiter.Reset(ctx, params.ClientIP); err != nil {
		u.logger.Warn().Err(err).Msg("failed to reset login attempts")
	}

	return u.createSession(ctx, user, true)
}

func (u *authUsecase) LoginWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	if u.google == nil {
		return nil, ErrGoogleDisabled
	}

	identity, err := u.google.ValidateIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, provider.ErrGoogleNotConfigured) {
			return nil, ErrGoogleDisabled
		}

		u.logger.Debug().Err(err).Msg("google id token rejected")
		return nil, ErrInvalidGoogleToken
	}

	email := NormalizeEmail(identity.Email)
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, mongo.ErrNoDocuments):
		user, err = u.createGoogleUser(ctx, email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return u.createSession(ctx, user, true)
}

func (u *authUsecase) Logout(ctx context.Context, userID string) error {
	cleared := ""
	if _, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{SessionID: &cleared}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, repository.ErrInvalidID) {
			return ErrUserNotFound
		}

		return err
	}

	return nil
}

func (u *authUsecase) createGoogleUser(ctx context.Context, email string) (*model.User, error) {
	passwordHash, err := security.UnusablePasswordHash()
	if err != nil {
		return nil, err
	}

	base := usernameFromEmail(email)
	username := base
	for attempt := 0; attempt < googleUsernameAttempts; attempt++ {
		user, err := u.userRepo.CreateUser(ctx, &model.User{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
		})
		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, repository.ErrDuplicateUsername):
			suffix, genErr := u.generateCode()
			if genErr != nil {
				return nil, genErr
			}
			username = withSuffix(base, suffix[:4])
		case errors.Is(err, repository.ErrDuplicateEmail):
			// Lost a race with a concurrent sign-in for the same address.
			return u.userRepo.GetUserByEmail(ctx, email)
		default:
			return nil, err
		}
	}

	return nil, ErrUsernameTaken
}

// createSession issues a token and records its jti as the account's only
// accepted session.
func (u *authUsecase) createSession(ctx context.Context, user *model.User, stampLogin bool) (*Session, error) {
	token, jti, err := u.jwtAuth.IssueSessionToken(auth.Subject{
		ID:       user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
	}, u.tokenTTL)
	if err != nil {
		return nil, err
	}

	params := repository.UpdateUserParams{SessionID: &jti}
	if stampLogin {
		now := u.now()
		params.LastLoginAt = &now
	}

	updated, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), params)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, User: updated}, nil
}

func (u *authUsecase) limited(ctx context.Context, key string) bool {
	exceeded, err := u.loginLimiter.Exceeded(ctx, key)
	if err != nil {
		u.logger.Warn().Err(err).Msg("failed to read login attempts")
		return false
	}

	return exceeded
}

func (u *authUsecase) registerFailure(ctx context.Context, key string) {
	if _, err := u.loginLimiter.Register(ctx, key); err != nil {
		u.logger.Warn().Err(err).Msg("failed to record login attempt")
	}
}

// NormalizeUsername trims surrounding whitespace.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// usernameFromEmail derives a valid username from the local part of an address.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	name := usernameUnsafe.ReplaceAllString(strings.ToLower(local), "_")
	name = strings.Trim(name, "_")

	for len(name) < minUsernameLength {
		name += "_"
	}
	if len(name) > maxUsernameLength {
		name = name[:maxUsernameLength]
	}

	return name
}

func withSuffix(base, suffix string) string {
	if len(base)+len(suffix)+1 > maxUsernameLength {
		base = base[:maxUsernameLength-len(suffix)-1]
	}

	return fmt.Sprintf("%s_%s", base, suffix)
}
