package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/usecase"
	"github.com/vasapolrittideah/notes-api/shared/apperror"
	"github.com/vasapolrittideah/notes-api/shared/auth"
	"github.com/vasapolrittideah/notes-api/shared/middleware"
	"github.com/vasapolrittideah/notes-api/shared/response"
	"github.com/vasapolrittideah/notes-api/shared/validation"
)

// PingFunc reports whether the document store is reachable.
type PingFunc func(ctx context.Context) error

// ServiceInfo describes the running service on the root and health endpoints.
type ServiceInfo struct {
	Name        string
	Version     string
	Description string
	Environment string
}

// Dependencies holds everything the HTTP handlers call into.
type Dependencies struct {
	Auth          usecase.AuthUsecase
	PasswordReset usecase.PasswordResetUsecase
	Profile       usecase.ProfileUsecase
	Notes         usecase.NoteUsecase
	Gate          *auth.Gate
	Validator     *validation.Validator
	Ping          PingFunc
	Info          ServiceInfo
	Logger        *zerolog.Logger
}

type Handler struct {
	auth          usecase.AuthUsecase
	passwordReset usecase.PasswordResetUsecase
	profile       usecase.ProfileUsecase
	notes         usecase.NoteUsecase
	gate          *auth.Gate
	validator     *validation.Validator
	ping          PingFunc
	info          ServiceInfo
	startedAt     time.Time
	logger        *zerolog.Logger
}

func New(deps Dependencies) *Handler {
	return &Handler{
		auth:          deps.Auth,
		passwordReset: deps.PasswordReset,
		profile:       deps.Profile,
		notes:         deps.Notes,
		gate:          deps.Gate,
		validator:     deps.Validator,
		ping:          deps.Ping,
		info:          deps.Info,
		startedAt:     time.Now(),
		logger:        deps.Logger,
	}
}

var (
	errInvalidFields = apperror.New(apperror.KindValidation,
		"Invalid request fields", "Campos da requisição inválidos")
	errInvalidQuery = apperror.New(apperror.KindValidation,
		"Invalid query parameters", "Parâmetros de consulta inválidos")
)

// decode reads a JSON body into dst.
func decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperror.ErrMissingBody
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ErrMissingBody
		}
		return apperror.ErrInvalidBody
	}

	return nil
}

// decodeValidate decodes and validates the body, writing the failure response
// itself. It reports whether the handler may continue.
func (h *Handler) decodeValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decode(r, dst); err != nil {
		h.fail(w, err)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		var fieldErrs *validation.Error
		if errors.As(err, &fieldErrs) {
			response.FailWithDetails(w, http.StatusBadRequest, errInvalidFields.EN, errInvalidFields.PT,
				&response.FieldErrors{EN: fieldErrs.EN, PT: fieldErrs.PT})
			return false
		}
		h.fail(w, err)
		return false
	}

	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	response.Error(w, h.logger, err)
}

// userID returns the account id of the authenticated caller.
func userID(r *http.Request) string {
	claims, ok := middleware.ClaimsFromRequest(r)
	if !ok {
		return ""
	}
	return claims.UserID()
}

// clientIP returns the caller address without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, errInvalidQuery
	}
	return n, nil
}
