package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/shared/security"
)

type memorySettings struct {
	MockSettingRepository
	values map[string]string
}

func newMemorySettings() *memorySettings {
	s := &memorySettings{values: map[string]string{}}
	s.GetSettingFunc = func(name string) (*model.Setting, error) {
		value, ok := s.values[name]
		if !ok {
			return nil, mongo.ErrNoDocuments
		}
		return &model.Setting{Name: name, Value: value}, nil
	}
	s.UpsertSettingFunc = func(name, value string) (*model.Setting, error) {
		s.values[name] = value
		return &model.Setting{Name: name, Value: value}, nil
	}
	return s
}

func TestSettings(t *testing.T) {
	cipher := newTestCipher(t)

	t.Run("values are sealed at rest", func(t *testing.T) {
		store := newMemorySettings()
		usecase := NewSettingUsecase(store, cipher)

		require.NoError(t, usecase.SetSetting(context.Background(), "EMAIL_PASSWORD", "app-password"))
		assert.NotEqual(t, "app-password", store.values["EMAIL_PASSWORD"])

		value, err := usecase.GetSetting(context.Background(), "EMAIL_PASSWORD")
		require.NoError(t, err)
		assert.Equal(t, "app-password", value)
	})

	t.Run("invalid names", func(t *testing.T) {
		usecase := NewSettingUsecase(newMemorySettings(), cipher)

		for _, name := range []string{"", "email_password", "EMAIL-PASSWORD", "A B"} {
			assert.ErrorIs(t, usecase.SetSetting(context.Background(), name, "v"), ErrInvalidSettingName, name)
		}
	})

	t.Run("missing setting", func(t *testing.T) {
		usecase := NewSettingUsecase(newMemorySettings(), cipher)

		_, err := usecase.GetSetting(context.Background(), "NOPE")
		assert.ErrorIs(t, err, ErrSettingNotFound)
	})

	t.Run("smtp credentials", func(t *testing.T) {
		store := newMemorySettings()
		usecase := NewSettingUsecase(store, cipher)

		address, password, err := usecase.SMTPCredentials(context.Background())
		require.NoError(t, err)
		assert.Empty(t, address)
		assert.Empty(t, password)

		require.NoError(t, usecase.SetSetting(context.Background(), model.SettingEmailAddress, "notes@example.com"))
		require.NoError(t, usecase.SetSetting(context.Background(), model.SettingEmailPassword, "app-password"))

		address, password, err = usecase.SMTPCredentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "notes@example.com", address)
		assert.Equal(t, "app-password", password)
	})

	t.Run("value sealed under another key", func(t *testing.T) {
		store := newMemorySettings()
		other, err := security.NewFieldCipher("other-secret", "test-salt")
		require.NoError(t, err)
		require.NoError(t, NewSettingUsecase(store, other).SetSetting(context.Background(), "EMAIL_ADDRESS", "x"))

		_, _, err = NewSettingUsecase(store, cipher).SMTPCredentials(context.Background())
		assert.ErrorIs(t, err, ErrFieldCrypto)
	})
}
