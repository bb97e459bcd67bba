// Package response writes the bilingual JSON envelope returned by every endpoint.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/notes-api/shared/apperror"
)

const (
	SuccessCodeEN = "Success"
	SuccessCodePT = "Sucesso"
	FailureCodeEN = "Error during processing"
	FailureCodePT = "Erro durante processamento"
)

// Message is one locale's message/code pair.
type Message struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// FieldErrors holds per-field validation messages for both locales.
type FieldErrors struct {
	PT map[string]string `json:"pt"`
	EN map[string]string `json:"en"`
}

// Envelope is the response body shape shared by successes and failures.
type Envelope struct {
	PT      Message      `json:"pt"`
	EN      Message      `json:"en"`
	Data    any          `json:"data,omitempty"`
	Details *FieldErrors `json:"details,omitempty"`
}

// Success writes a success envelope with an optional payload.
func Success(w http.ResponseWriter, status int, en, pt string, data any) {
	JSON(w, status, Envelope{
		PT:   Message{Message: pt, Code: SuccessCodePT},
		EN:   Message{Message: en, Code: SuccessCodeEN},
		Data: data,
	})
}

// Fail writes a failure envelope.
func Fail(w http.ResponseWriter, status int, en, pt string) {
	JSON(w, status, Envelope{
		PT: Message{Message: pt, Code: FailureCodePT},
		EN: Message{Message: en, Code: FailureCodeEN},
	})
}

// FailWithDetails writes a failure envelope carrying field errors.
func FailWithDetails(w http.ResponseWriter, status int, en, pt string, details *FieldErrors) {
	JSON(w, status, Envelope{
		PT:      Message{Message: pt, Code: FailureCodePT},
		EN:      Message{Message: en, Code: FailureCodeEN},
		Details: details,
	})
}

// Error maps err onto a status code and a failure envelope. Errors outside the
// apperror taxonomy, and crypto errors, are logged and collapsed into a generic
// server error.
func Error(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindCrypto || appErr.Kind == apperror.KindServer {
		if logger != nil {
			logger.Error().Err(err).Msg("request failed")
		}
		Fail(w, http.StatusInternalServerError, apperror.ErrInternal.EN, apperror.ErrInternal.PT)
		return
	}

	Fail(w, StatusFor(appErr.Kind), appErr.EN, appErr.PT)
}

// StatusFor returns the HTTP status used for an error kind.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindAuth:
		return http.StatusUnauthorized
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindRateLimited:
		return http.StatusTooManyRequests
	case apperror.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes v as a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
