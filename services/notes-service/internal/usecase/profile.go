package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/repository"
	"github.com/vasapolrittideah/notes-api/shared/security"
)

// ProfileUsecase defines the business logic for the caller's own account.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*model.User, error)

	// UpdateProfile changes account fields after checking the current password.
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*model.User, error)

	// ReplaceProfile overwrites username, email and password of a token-authenticated caller.
	ReplaceProfile(ctx context.Context, userID string, params ReplaceProfileParams) (*model.User, error)
}

// UpdateProfileParams defines the parameters for a password-confirmed profile update.
type UpdateProfileParams struct {
	CurrentPassword string
	Username        *string
	Email           *string
	NewPassword     *string
}

// ReplaceProfileParams defines the full set of account fields.
type ReplaceProfileParams struct {
	Username string
	Email    string
	Password string
}

type profileUsecase struct {
	userRepo repository.UserRepository
}

func NewProfileUsecase(userRepo repository.UserRepository) ProfileUsecase {
	return &profileUsecase{userRepo: userRepo}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, userError(err)
	}

	return user, nil
}

func (u *profileUsecase) UpdateProfile(
	ctx context.Context,
	userID string,
	params UpdateProfileParams,
) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, userError(err)
	}

	if ok, err := security.VerifyPassword(params.CurrentPassword, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCurrentPassword
	}

	var update repository.UpdateUserParams
	if params.Username != nil {
		username := NormalizeUsername(*params.Username)
		update.Username = &username
	}
	if params.Email != nil {
		email := NormalizeEmail(*params.Email)
		update.Email = &email
	}
	if params.NewPassword != nil {
		passwordHash, err := security.HashPassword(*params.NewPassword)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &passwordHash
	}

	updated, err := u.userRepo.UpdateUser(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNothingToUpdate) {
			return user, nil
		}
		return nil, userError(err)
	}

	return updated, nil
}

func (u *profileUsecase) ReplaceProfile(
	ctx context.Context,
	userID string,
	params ReplaceProfileParams,
) (*model.User, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	username := NormalizeUsername(params.Username)
	email := NormalizeEmail(params.Email)

	updated, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		Username:     &username,
		Email:        &email,
		PasswordHash: &passwordHash,
	})
	if err != nil {
		return nil, userError(err)
	}

	return updated, nil
}

func userError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, repository.ErrInvalidID):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	default:
		return err
	}
}
