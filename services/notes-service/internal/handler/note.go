package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/usecase"
	"github.com/vasapolrittideah/notes-api/shared/response"
)

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var body CreateNoteRequest
	if !h.decodeValidate(w, r, &body) {
		return
	}

	note, err := h.notes.CreateNote(r.Context(), userID(r), usecase.CreateNoteParams{
		Title:    body.Title,
		Content:  body.Content,
		IsPublic: body.IsPublic,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusCreated,
		"Note created successfully", "Nota criada com sucesso", toNoteResponse(note))
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		h.fail(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, err)
		return
	}

	notes, err := h.notes.ListNotes(r.Context(), userID(r), usecase.ListNotesParams{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"Notes retrieved successfully", "Notas obtidas com sucesso", toNoteListResponse(notes))
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetNote(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"Note retrieved successfully", "Nota obtida com sucesso", toNoteResponse(note))
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var body UpdateNoteRequest
	if !h.decodeValidate(w, r, &body) {
		return
	}

	note, err := h.notes.UpdateNote(r.Context(), userID(r), chi.URLParam(r, "id"), usecase.UpdateNoteParams{
		Title:    body.Title,
		Content:  body.Content,
		IsPublic: body.IsPublic,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"Note updated successfully", "Nota atualizada com sucesso", toNoteResponse(note))
}

func (h *Handler) TogglePublic(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.TogglePublic(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"Note public status toggled successfully", "Visibilidade da nota alterada com sucesso",
		toNoteResponse(note))
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.DeleteNote(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Note deleted successfully", "Nota excluída com sucesso", nil)
}

// GetPublicNote serves a public note without authentication.
func (h *Handler) GetPublicNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.GetPublicNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Note retrieved successfully", "Nota obtida com sucesso",
		PublicNoteResponse{
			ID:        note.ID,
			Title:     note.Title,
			Content:   note.Content,
			HTML:      note.HTML,
			UpdatedAt: note.UpdatedAt,
		})
}
