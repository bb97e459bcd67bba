package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/repository"
	"github.com/vasapolrittideah/notes-api/shared/apperror"
	"github.com/vasapolrittideah/notes-api/shared/ratelimit"
	"github.com/vasapolrittideah/notes-api/shared/security"
)

// PasswordResetUsecase defines the business logic for one-time code password resets.
type PasswordResetUsecase interface {
	// SendCode emails a fresh 6-digit code to the account owning email.
	// Unknown addresses succeed silently.
	SendCode(ctx context.Context, email string) error

	// VerifyCode consumes the code and replaces the account password.
	VerifyCode(ctx context.Context, params VerifyCodeParams) error
}

// VerifyCodeParams defines the parameters for completing a password reset.
type VerifyCodeParams struct {
	Email    string
	Code     string
	Password string
}

// EmailSender delivers HTML email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) bool
}

// CodeTTL is how long an issued code stays valid.
const CodeTTL = 10 * time.Minute

const resetEmailSubject = "Código de verificação / Verification code"

type passwordResetUsecase struct {
	userRepo       repository.UserRepository
	codeRepo       repository.VerificationCodeRepository
	mailer         EmailSender
	sendLimiter    ratelimit.Limiter
	verifyLimiter  ratelimit.Limiter
	sanitizePolicy *bluemonday.Policy
	logger         *zerolog.Logger
	settings
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	codeRepo repository.VerificationCodeRepository,
	mailer EmailSender,
	sendLimiter ratelimit.Limiter,
	verifyLimiter ratelimit.Limiter,
	logger *zerolog.Logger,
	opts ...Option,
) PasswordResetUsecase {
	if sendLimiter == nil {
		sendLimiter = ratelimit.Noop()
	}
	if verifyLimiter == nil {
		verifyLimiter = ratelimit.Noop()
	}

	return &passwordResetUsecase{
		userRepo:       userRepo,
		codeRepo:       codeRepo,
		mailer:         mailer,
		sendLimiter:    sendLimiter,
		verifyLimiter:  verifyLimiter,
		sanitizePolicy: bluemonday.StrictPolicy(),
		logger:         logger,
		settings:       newSettings(opts),
	}
}

func (u *passwordResetUsecase) SendCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	if exceeded, err := u.sendLimiter.Exceeded(ctx, email); err != nil {
		u.logger.Warn().Err(err).Msg("failed to read send-code attempts")
	} else if exceeded {
		return apperror.ErrTooManyAttempts
	}
	if _, err := u.sendLimiter.Register(ctx, email); err != nil {
		u.logger.Warn().Err(err).Msg("failed to record send-code attempt")
	}

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// To prevent email enumeration, do not reveal that the email does not exist.
			return nil
		}
		return err
	}

	if err := u.codeRepo.InvalidateUserCodes(ctx, user.ID.Hex()); err != nil {
		return err
	}

	code, err := u.generateCode()
	if err != nil {
		return err
	}

	if _, err := u.codeRepo.CreateCode(ctx, &model.VerificationCode{
		UserID:    user.ID,
		Email:     user.Email,
		CodeHash:  hashCode(code),
		ExpiresAt: u.now().Add(CodeTTL),
	}); err != nil {
		return err
	}

	// A failed send answers like an unknown address; the undelivered code is withdrawn.
	if !u.mailer.Send(ctx, user.Email, resetEmailSubject, u.resetEmailBody(user.Username, code)) {
		u.logger.Error().Str("user_id", user.ID.Hex()).Msg("verification email not sent")
		if err := u.codeRepo.InvalidateUserCodes(ctx, user.ID.Hex()); err != nil {
			u.logger.Warn().Err(err).Msg("failed to withdraw undelivered code")
		}
	}

	return nil
}

func (u *passwordResetUsecase) VerifyCode(ctx context.Context, params VerifyCodeParams) error {
	email := NormalizeEmail(params.Email)

	if exceeded, err := u.verifyLimiter.Exceeded(ctx, email); err != nil {
		u.logger.Warn().Err(err).Msg("failed to read verify-code attempts")
	} else if exceeded {
		return apperror.ErrTooManyAttempts
	}

	code, err := u.codeRepo.ConsumeCode(ctx, email, hashCode(params.Code), u.now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, err := u.verifyLimiter.Register(ctx, email); err != nil {
				u.logger.Warn().Err(err).Msg("failed to record verify-code attempt")
			}
			return ErrInvalidCode
		}
		return err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return err
	}

	// Clearing the session revokes every token issued before the reset.
	cleared := ""
	if _, err := u.userRepo.UpdateUser(ctx, code.UserID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
		SessionID:    &cleared,
	}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if err := u.verifyLimiter.Reset(ctx, email); err != nil {
		u.logger.Warn().Err(err).Msg("failed to reset verify-code attempts")
	}

	return nil
}

func (u *passwordResetUsecase) resetEmailBody(username, code string) string {
	return fmt.Sprintf(`
		<p>Olá %[1]s,</p>
		<p>Use o código abaixo para redefinir sua senha. Ele expira em %[3]d minutos.</p>
		<h2 style="letter-spacing:4px">%[2]s</h2>
		<p>Se você não solicitou a redefinição, ignore este email.</p>
		<hr>
		<p>Hi %[1]s,</p>
		<p>Use the code below to reset your password. It expires in %[3]d minutes.</p>
		<h2 style="letter-spacing:4px">%[2]s</h2>
		<p>If you did not request a password reset, you can safely ignore this email.</p>
		<p>Organizando Tudo</p>
	`, u.sanitizePolicy.Sanitize(username), code, int(CodeTTL.Minutes()))
}
