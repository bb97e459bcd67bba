package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/repository"
)

// SettingUsecase stores sealed runtime settings such as the SMTP credentials.
type SettingUsecase interface {
	SetSetting(ctx context.Context, name, value string) error
	GetSetting(ctx context.Context, name string) (string, error)

	// SMTPCredentials reads the mail account from EMAIL_ADDRESS and EMAIL_PASSWORD.
	// Missing settings yield empty strings.
	SMTPCredentials(ctx context.Context) (address, password string, err error)
}

var settingName = regexp.MustCompile(`^[A-Z0-9_]+$`)

type settingUsecase struct {
	settingRepo repository.SettingRepository
	cipher      FieldCipher
}

func NewSettingUsecase(settingRepo repository.SettingRepository, cipher FieldCipher) SettingUsecase {
	return &settingUsecase{
		settingRepo: settingRepo,
		cipher:      cipher,
	}
}

func (u *settingUsecase) SetSetting(ctx context.Context, name, value string) error {
	if !settingName.MatchString(name) {
		return ErrInvalidSettingName
	}

	sealed, err := u.cipher.Seal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFieldCrypto, err)
	}

	_, err = u.settingRepo.UpsertSetting(ctx, name, sealed)
	return err
}

func (u *settingUsecase) GetSetting(ctx context.Context, name string) (string, error) {
	setting, err := u.settingRepo.GetSetting(ctx, name)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrSettingNotFound
		}
		return "", err
	}

	value, err := u.cipher.Open(setting.Value)
	if err != nil {
		return "", fmt.Errorf("%w: setting %s: %w", ErrFieldCrypto, name, err)
	}

	return value, nil
}

func (u *settingUsecase) SMTPCredentials(ctx context.Context) (string, string, error) {
	address, err := u.optional(ctx, model.SettingEmailAddress)
	if err != nil {
		return "", "", err
	}

	password, err := u.optional(ctx, model.SettingEmailPassword)
	if err != nil {
		return "", "", err
	}

	return address, password, nil
}

func (u *settingUsecase) optional(ctx context.Context, name string) (string, error) {
	value, err := u.GetSetting(ctx, name)
	if errors.Is(err, ErrSettingNotFound) {
		return "", nil
	}
	return value, err
}
