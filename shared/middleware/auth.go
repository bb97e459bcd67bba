package middleware

import (
	"net/http"

	"github.com/vasapolrittideah/notes-api/shared/apperror"
	"github.com/vasapolrittideah/notes-api/shared/auth"
	"github.com/vasapolrittideah/notes-api/shared/response"
)

// Auth returns middleware that rejects requests without a valid session token
// and stores the verified claims in the request context.
func Auth(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := gate.Authorize(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				response.Fail(w, http.StatusUnauthorized, apperror.ErrUnauthorized.EN, apperror.ErrUnauthorized.PT)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// ClaimsFromRequest returns the claims stored by Auth.
func ClaimsFromRequest(r *http.Request) (*auth.SessionClaims, bool) {
	return auth.ClaimsFromContext(r.Context())
}
