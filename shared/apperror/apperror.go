// Package apperror defines the error taxonomy shared by the HTTP and gRPC
// surfaces. Every error carries an English and a Portuguese message so the
// transport can answer in both locales.
package apperror

import "errors"

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	KindCrypto
	KindRateLimited
	KindMethodNotAllowed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindCrypto:
		return "crypto"
	case KindRateLimited:
		return "rate_limited"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "server"
	}
}

// Error is a domain error with a bilingual user-facing message.
type Error struct {
	Kind Kind
	EN   string
	PT   string
}

// New creates a new Error. Sentinels built with New compare by identity.
func New(kind Kind, en, pt string) *Error {
	return &Error{Kind: kind, EN: en, PT: pt}
}

func (e *Error) Error() string {
	return e.EN
}

// KindOf returns the kind of the first *Error in err's chain, or KindServer.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindServer
}

// Common errors used across the transports.
var (
	ErrUnauthorized     = New(KindAuth, "Invalid token", "Token inválido")
	ErrInternal         = New(KindServer, "Internal server error", "Erro interno do servidor")
	ErrMissingBody      = New(KindValidation, "Request body not provided", "Corpo da requisição não fornecido")
	ErrInvalidBody      = New(KindValidation, "Request body is not valid JSON", "Corpo da requisição não é um JSON válido")
	ErrMissingFields    = New(KindValidation, "Required fields not provided", "Campos obrigatórios não fornecidos")
	ErrMethodNotAllowed = New(KindMethodNotAllowed, "Method not allowed", "Método não permitido")
	ErrNotFound         = New(KindNotFound, "Resource not found", "Recurso não encontrado")
	ErrTooManyAttempts  = New(KindRateLimited, "Too many attempts, try again later", "Muitas tentativas, tente novamente mais tarde")
)
