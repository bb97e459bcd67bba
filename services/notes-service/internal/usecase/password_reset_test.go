package usecase

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/repository"
	"github.com/vasapolrittideah/notes-api/shared/apperror"
	"github.com/vasapolrittideah/notes-api/shared/security"
)

type resetFixture struct {
	user    *model.User
	users   *MockUserRepository
	codes   *fakeCodeStore
	mailer  *MockEmailSender
	sent    []string
	updates []repository.UpdateUserParams
	now     time.Time
	mu      sync.Mutex
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()

	f := &resetFixture{
		user:  storedUser(t, "alice", "alice@example.com", "old-password"),
		codes: &fakeCodeStore{},
		now:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.users = &MockUserRepository{
		GetUserByEmailFunc: func(email string) (*model.User, error) {
			if email == f.user.Email {
				return f.user, nil
			}
			return nil, mongo.ErrNoDocuments
		},
		UpdateUserFunc: func(id string, params repository.UpdateUserParams) (*model.User, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			assert.Equal(t, f.user.ID.Hex(), id)
			f.updates = append(f.updates, params)
			return echoUpdate(f.user)(id, params)
		},
	}
	f.mailer = &MockEmailSender{
		SendFunc: func(to, _, body string) bool {
			assert.Equal(t, f.user.Email, to)
			f.sent = append(f.sent, body)
			return true
		},
	}
	return f
}

func (f *resetFixture) usecase(codes ...string) PasswordResetUsecase {
	next := 0
	generator := func() (string, error) {
		code := codes[next%len(codes)]
		next++
		return code, nil
	}
	return NewPasswordResetUsecase(f.users, f.codes, f.mailer, nil, nil, nopLogger(),
		WithClock(func() time.Time { return f.now }),
		WithCodeGenerator(generator),
	)
}

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestGenerateVerificationCode(t *testing.T) {
	for range 50 {
		code, err := generateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestSendCode(t *testing.T) {
	t.Run("unknown email succeeds silently", func(t *testing.T) {
		f := newResetFixture(t)

		require.NoError(t, f.usecase("123456").SendCode(context.Background(), "ghost@example.com"))
		assert.Empty(t, f.sent)
		assert.Empty(t, f.codes.codes)
	})

	t.Run("stores only the digest and mails the code", func(t *testing.T) {
		f := newResetFixture(t)

		require.NoError(t, f.usecase("123456").SendCode(context.Background(), " Alice@Example.com "))

		require.Len(t, f.codes.codes, 1)
		stored := f.codes.codes[0]
		assert.Equal(t, hashCode("123456"), stored.CodeHash)
		assert.NotContains(t, stored.CodeHash, "123456")
		assert.Equal(t, f.now.Add(10*time.Minute), stored.ExpiresAt)
		assert.Equal(t, f.user.ID, stored.UserID)

		require.Len(t, f.sent, 1)
		assert.Contains(t, f.sent[0], "123456")
	})

	t.Run("reissuing invalidates the earlier code", func(t *testing.T) {
		f := newResetFixture(t)
		usecase := f.usecase("111111", "222222")

		require.NoError(t, usecase.SendCode(context.Background(), f.user.Email))
		require.NoError(t, usecase.SendCode(context.Background(), f.user.Email))
		assert.Equal(t, 1, f.codes.unused())

		err := usecase.VerifyCode(context.Background(), VerifyCodeParams{
			Email: f.user.Email, Code: "111111", Password: "new-password",
		})
		assert.ErrorIs(t, err, ErrInvalidCode)

		require.NoError(t, usecase.VerifyCode(context.Background(), VerifyCodeParams{
			Email: f.user.Email, Code: "222222", Password: "new-password",
		}))
	})

	t.Run("username is sanitised in the email", func(t *testing.T) {
		f := newResetFixture(t)
		f.user.Username = `<script>alert(1)</script>bob`

		require.NoError(t, f.usecase("123456").SendCode(context.Background(), f.user.Email))
		require.Len(t, f.sent, 1)
		assert.NotContains(t, f.sent[0], "<script>")
	})

	t.Run("mail failure answers like an unknown email and withdraws the code", func(t *testing.T) {
		f := newResetFixture(t)
		f.mailer.SendFunc = func(string, string, string) bool { return false }

		require.NoError(t, f.usecase("123456").SendCode(context.Background(), f.user.Email))
		require.Len(t, f.codes.codes, 1)
		assert.Equal(t, 0, f.codes.unused())
	})

	t.Run("allows the full budget of sends per window", func(t *testing.T) {
		f := newResetFixture(t)
		limiter := newCountingLimiter(3)
		usecase := NewPasswordResetUsecase(f.users, f.codes, f.mailer, limiter, nil, nopLogger(),
			WithCodeGenerator(func() (string, error) { return "123456", nil }))

		for i := range 3 {
			require.NoError(t, usecase.SendCode(context.Background(), f.user.Email), "send %d", i+1)
		}
		err := usecase.SendCode(context.Background(), f.user.Email)
		assert.ErrorIs(t, err, apperror.ErrTooManyAttempts)
		assert.Len(t, f.sent, 3)
	})

	t.Run("exceeded budget sends nothing", func(t *testing.T) {
		f := newResetFixture(t)
		limiter := &MockLimiter{ExceededFunc: func(string) (bool, error) { return true, nil }}
		usecase := NewPasswordResetUsecase(f.users, f.codes, f.mailer, limiter, nil, nopLogger())

		err := usecase.SendCode(context.Background(), f.user.Email)
		assert.ErrorIs(t, err, apperror.ErrTooManyAttempts)
		assert.Empty(t, f.sent)
	})

	t.Run("limiter outage fails open", func(t *testing.T) {
		f := newResetFixture(t)
		down := errors.New("redis: connection refused")
		limiter := &MockLimiter{
			ExceededFunc: func(string) (bool, error) { return false, down },
			RegisterFunc: func(string) (bool, error) { return false, down },
		}
		usecase := NewPasswordResetUsecase(f.users, f.codes, f.mailer, limiter, nil, nopLogger(),
			WithCodeGenerator(func() (string, error) { return "123456", nil }))

		require.NoError(t, usecase.SendCode(context.Background(), f.user.Email))
		assert.Len(t, f.sent, 1)
	})
}

func TestVerifyCode(t *testing.T) {
	t.Run("replaces the password and revokes sessions", func(t *testing.T) {
		f := newResetFixture(t)
		usecase := f.usecase("654321")
		require.NoError(t, usecase.SendCode(context.Background(), f.user.Email))

		require.NoError(t, usecase.VerifyCode(context.Background(), VerifyCodeParams{
			Email: "ALICE@example.com", Code: "654321", Password: "new-password",
		}))

		require.Len(t, f.updates, 1)
		update := f.updates[0]
		require.NotNil(t, update.SessionID)
		assert.Empty(t, *update.SessionID)
		require.NotNil(t, update.PasswordHash)
		ok, err := security.VerifyPassword("new-password", *update.PasswordHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("code used after ten minutes is rejected", func(t *testing.T) {
		f := newResetFixture(t)
		usecase := f.usecase("654321")
		require.NoError(t, usecase.SendCode(context.Background(), f.user.Email))

		f.now = f.now.Add(10*time.Minute + time.Second)

		err := usecase.VerifyCode(context.Background(), VerifyCodeParams{
			Email: f.user.Email, Code: "654321", Password: "new-password",
		})
		assert.ErrorIs(t, err, ErrInvalidCode)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		assert.Empty(t, f.updates)
	})

	t.Run("code is single use", func(t *testing.T) {
		f := newResetFixture(t)
		usecase := f.usecase("654321")
		require.NoError(t, usecase.SendCode(context.Background(), f.user.Email))

		params := VerifyCodeParams{Email: f.user.Email, Code: "654321", Password: "new-password"}
		require.NoError(t, usecase.VerifyCode(context.Background(), params))
		assert.ErrorIs(t, usecase.VerifyCode(context.Background(), params), ErrInvalidCode)
	})

	t.Run("concurrent consumption succeeds exactly once", func(t *testing.T) {
		f := newResetFixture(t)
		usecase := f.usecase("777777")
		require.NoError(t, usecase.SendCode(context.Background(), f.user.Email))

		var succeeded, rejected atomic.Int32
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := usecase.VerifyCode(context.Background(), VerifyCodeParams{
					Email: f.user.Email, Code: "777777", Password: "new-password",
				})
				switch {
				case err == nil:
					succeeded.Add(1)
				case errors.Is(err, ErrInvalidCode):
					rejected.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())
		assert.Equal(t, int32(15), rejected.Load())
		assert.Len(t, f.updates, 1)
	})

	t.Run("wrong codes are counted and lock out", func(t *testing.T) {
		f := newResetFixture(t)
		failures := 0
		limiter := &MockLimiter{
			ExceededFunc: func(string) (bool, error) { return failures >= 2, nil },
			RegisterFunc: func(key string) (bool, error) {
				assert.Equal(t, f.user.Email, key)
				failures++
				return failures >= 2, nil
			},
		}
		usecase := NewPasswordResetUsecase(f.users, f.codes, f.mailer, nil, limiter, nopLogger())

		params := VerifyCodeParams{Email: f.user.Email, Code: "000000", Password: "new-password"}
		assert.ErrorIs(t, usecase.VerifyCode(context.Background(), params), ErrInvalidCode)
		assert.ErrorIs(t, usecase.VerifyCode(context.Background(), params), ErrInvalidCode)
		assert.ErrorIs(t, usecase.VerifyCode(context.Background(), params), apperror.ErrTooManyAttempts)
	})
}
