package handler

import (
	"errors"
	"net/http"
	"slices"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/usecase"
	"github.com/vasapolrittideah/notes-api/shared/apperror"
	"github.com/vasapolrittideah/notes-api/shared/response"
)

// Handlers under /.netlify/functions keep the request and response shapes of
// the serverless deployment that existing web clients still call.

var (
	errNoteIDMissing = apperror.New(apperror.KindValidation, "Note ID not provided", "ID da nota não fornecido")
	errInvalidLogin  = apperror.New(apperror.KindAuth, "Invalid username or password", "Username ou senha inválidos")
)

type FunctionAccountRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type FunctionLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type FunctionNoteFields struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Public  *bool  `json:"public"`
}

type FunctionCreateNoteRequest struct {
	Note *FunctionNoteFields `json:"note" validate:"required"`
}

type FunctionUpdateNoteRequest struct {
	NewNote *FunctionNoteFields `json:"newNote" validate:"required"`
}

type FunctionUpdateUserRequest struct {
	Data *FunctionAccountRequest `json:"data" validate:"required"`
}

type FunctionAccountResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type FunctionUserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type FunctionNote struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    int64  `json:"date"`
	Public  bool   `json:"public"`
}

func toFunctionNote(note *usecase.Note) FunctionNote {
	return FunctionNote{
		ID:      note.ID,
		Title:   note.Title,
		Content: note.Content,
		Date:    note.CreatedAt.UnixMilli(),
		Public:  note.IsPublic,
	}
}

func (h *Handler) CreateAccountFunction(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	var body FunctionAccountRequest
	if !h.decodeRequired(w, r, &body) {
		return
	}

	session, err := h.auth.Register(r.Context(), usecase.RegisterParams{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, FunctionAccountResponse{
		Token:    session.Token,
		Username: session.User.Username,
		Email:    session.User.Email,
	})
}

func (h *Handler) LoginFunction(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	var body FunctionLoginRequest
	if !h.decodeRequired(w, r, &body) {
		return
	}

	session, err := h.auth.Login(r.Context(), usecase.LoginParams{
		Username: body.Username,
		Password: body.Password,
		ClientIP: clientIP(r),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			err = errInvalidLogin
		}
		h.fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, FunctionAccountResponse{
		Token:    session.Token,
		Username: session.User.Username,
		Email:    session.User.Email,
	})
}

func (h *Handler) VerifyTokenFunction(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	response.Success(w, http.StatusOK, "Valid token", "Token válido", nil)
}

func (h *Handler) UserFunction(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		user, err := h.profile.GetProfile(r.Context(), id)
		if err != nil {
			h.fail(w, err)
			return
		}

		response.JSON(w, http.StatusOK, FunctionUserResponse{Username: user.Username, Email: user.Email})
		return
	}

	var body FunctionUpdateUserRequest
	if !h.decodeRequired(w, r, &body) {
		return
	}

	if _, err := h.profile.ReplaceProfile(r.Context(), id, usecase.ReplaceProfileParams{
		Username: body.Data.Username,
		Email:    body.Data.Email,
		Password: body.Data.Password,
	}); err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"Your account has been successfully updated!", "Sua conta foi atualizada com sucesso!", nil)
}

func (h *Handler) NotesFunction(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}

	notes, err := h.notes.ListAllNotes(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	out := make([]FunctionNote, 0, len(notes))
	for _, note := range notes {
		out = append(out, toFunctionNote(note))
	}

	response.JSON(w, http.StatusOK, out)
}

func (h *Handler) NoteFunction(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete) {
		return
	}
	owner, ok := h.authorize(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		var body FunctionCreateNoteRequest
		if !h.decodeRequired(w, r, &body) {
			return
		}

		if _, err := h.notes.CreateNote(r.Context(), owner, usecase.CreateNoteParams{
			Title:    body.Note.Title,
			Content:  body.Note.Content,
			IsPublic: body.Note.Public,
		}); err != nil {
			h.fail(w, err)
			return
		}

		response.Success(w, http.StatusCreated,
			"Your note was successfully created!", "Sua nota foi criada com sucesso!", nil)
		return
	}

	noteID := r.URL.Query().Get("id")
	if noteID == "" {
		h.fail(w, errNoteIDMissing)
		return
	}

	switch r.Method {
	case http.MethodGet:
		note, err := h.notes.GetNote(r.Context(), owner, noteID)
		if err != nil {
			h.fail(w, err)
			return
		}

		response.JSON(w, http.StatusOK, toFunctionNote(note))

	case http.MethodPut:
		var body FunctionUpdateNoteRequest
		if !h.decodeRequired(w, r, &body) {
			return
		}

		if _, err := h.notes.UpdateNote(r.Context(), owner, noteID, usecase.UpdateNoteParams{
			Title:    &body.NewNote.Title,
			Content:  &body.NewNote.Content,
			IsPublic: body.NewNote.Public,
		}); err != nil {
			h.fail(w, err)
			return
		}

		response.Success(w, http.StatusOK,
			"Your note was updated successfully!", "Sua nota foi atualizada com sucesso!", nil)

	case http.MethodDelete:
		if err := h.notes.DeleteNote(r.Context(), owner, noteID); err != nil {
			h.fail(w, err)
			return
		}

		response.Success(w, http.StatusOK,
			"Your note was deleted successfully!", "Sua nota foi excluída com sucesso!", nil)
	}
}

func (h *Handler) PublishNoteFunction(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPut) {
		return
	}
	owner, ok := h.authorize(w, r)
	if !ok {
		return
	}

	noteID := r.URL.Query().Get("id")
	if noteID == "" {
		h.fail(w, errNoteIDMissing)
		return
	}

	if _, err := h.notes.TogglePublic(r.Context(), owner, noteID); err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"Your note was updated successfully!", "Sua nota foi atualizada com sucesso!", nil)
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	if slices.Contains(methods, r.Method) {
		return true
	}

	response.Fail(w, http.StatusMethodNotAllowed, apperror.ErrMethodNotAllowed.EN, apperror.ErrMethodNotAllowed.PT)
	return false
}

// authorize checks the bearer token and returns the caller's account id.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, err := h.gate.Authorize(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		response.Fail(w, http.StatusUnauthorized, apperror.ErrUnauthorized.EN, apperror.ErrUnauthorized.PT)
		return "", false
	}
	return claims.UserID(), true
}

// decodeRequired decodes and validates the body, answering any field failure
// with the generic missing-fields message.
func (h *Handler) decodeRequired(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decode(r, dst); err != nil {
		h.fail(w, err)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.fail(w, apperror.ErrMissingFields)
		return false
	}

	return true
}
