package router

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/handler"
	"github.com/vasapolrittideah/notes-api/shared/apperror"
	"github.com/vasapolrittideah/notes-api/shared/auth"
	mw "github.com/vasapolrittideah/notes-api/shared/middleware"
	"github.com/vasapolrittideah/notes-api/shared/response"
)

// Options tunes the cross-cutting middleware.
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix
}

// New creates the chi router with every route of the service.
func New(h *handler.Handler, gate *auth.Gate, logger *zerolog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.TrustedRealIP(opts.TrustedProxies))
	r.Use(mw.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.Metrics)
	r.Use(mw.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if opts.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(opts.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Fail(w, http.StatusNotFound, apperror.ErrNotFound.EN, apperror.ErrNotFound.PT)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, apperror.ErrMethodNotAllowed.EN, apperror.ErrMethodNotAllowed.PT)
	})

	r.Get("/", h.Info)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := mw.Auth(gate)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/google", h.GoogleLogin)
			r.Post("/send-code", h.SendCode)
			r.Post("/verify-code", h.VerifyCode)

			r.With(requireAuth).Post("/logout", h.Logout)
			r.With(requireAuth).Post("/verify-token", h.VerifyToken)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.CreateNote)
			r.Get("/", h.ListNotes)
			r.Get("/{id}", h.GetNote)
			r.Patch("/{id}", h.UpdateNote)
			r.Delete("/{id}", h.DeleteNote)
			r.Patch("/{id}/toggle-public", h.TogglePublic)
		})

		r.Get("/public/notes/{id}", h.GetPublicNote)
	})

	// Method checks and authorization happen inside these handlers so that a
	// wrong method answers 405 before the token is looked at.
	r.Route("/.netlify/functions", func(r chi.Router) {
		r.HandleFunc("/create-account", h.CreateAccountFunction)
		r.HandleFunc("/login", h.LoginFunction)
		r.HandleFunc("/verify-token", h.VerifyTokenFunction)
		r.HandleFunc("/user", h.UserFunction)
		r.HandleFunc("/notes", h.NotesFunction)
		r.HandleFunc("/note", h.NoteFunction)
		r.HandleFunc("/publish-note", h.PublishNoteFunction)
	})

	return r
}
