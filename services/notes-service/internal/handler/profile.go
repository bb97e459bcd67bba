package handler

import (
	"net/http"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/usecase"
	"github.com/vasapolrittideah/notes-api/shared/response"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.profile.GetProfile(r.Context(), userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"Profile retrieved successfully", "Perfil obtido com sucesso", toUserResponse(user))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body UpdateProfileRequest
	if !h.decodeValidate(w, r, &body) {
		return
	}

	user, err := h.profile.UpdateProfile(r.Context(), userID(r), usecase.UpdateProfileParams{
		CurrentPassword: body.Password,
		Username:        body.Username,
		Email:           body.Email,
		NewPassword:     body.NewPassword,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"Profile updated successfully", "Perfil atualizado com sucesso", toUserResponse(user))
}
