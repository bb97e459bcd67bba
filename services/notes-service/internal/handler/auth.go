package handler

import (
	"net/http"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/usecase"
	"github.com/vasapolrittideah/notes-api/shared/response"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequest
	if !h.decodeValidate(w, r, &body) {
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

	response.Success(w, http.StatusCreated,
		"User successfully registered", "Usuário registrado com sucesso", toAuthResponse(session))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if !h.decodeValidate(w, r, &body) {
		return
	}

	session, err := h.auth.Login(r.Context(), usecase.LoginParams{
		Username: body.Username,
		Password: body.Password,
		ClientIP: clientIP(r),
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"User successfully logged in", "Login realizado com sucesso", toAuthResponse(session))
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var body GoogleLoginRequest
	if !h.decodeValidate(w, r, &body) {
		return
	}

	session, err := h.auth.LoginWithGoogle(r.Context(), body.IDToken)
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"User successfully logged in", "Login realizado com sucesso", toAuthResponse(session))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), userID(r)); err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Logged out successfully", "Logout realizado com sucesso", nil)
}

// VerifyToken answers for any request that passed the auth middleware.
func (h *Handler) VerifyToken(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, http.StatusOK, "Valid token", "Token válido", nil)
}

func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	var body SendCodeRequest
	if !h.decodeValidate(w, r, &body) {
		return
	}

	if err := h.passwordReset.SendCode(r.Context(), body.Email); err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK,
		"If the email is registered, a verification code has been sent",
		"Se o email estiver cadastrado, um código de verificação foi enviado", nil)
}

func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var body VerifyCodeRequest
	if !h.decodeValidate(w, r, &body) {
		return
	}

	if err := h.passwordReset.VerifyCode(r.Context(), usecase.VerifyCodeParams{
		Email:    body.Email,
		Code:     body.Code,
		Password: body.Password,
	}); err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Password reset successfully", "Senha redefinida com sucesso", nil)
}
