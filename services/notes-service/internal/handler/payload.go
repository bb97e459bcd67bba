package handler

import (
	"time"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/usecase"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Code     string `json:"code"     validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=6,max=50"`
}

type UpdateProfileRequest struct {
	Password    string  `json:"password"              validate:"required,min=6"`
	Username    *string `json:"username,omitempty"    validate:"omitempty,min=3,max=20"`
	Email       *string `json:"email,omitempty"       validate:"omitempty,email"`
	NewPassword *string `json:"newPassword,omitempty" validate:"omitempty,min=6"`
}

type CreateNoteRequest struct {
	Title    string `json:"title"    validate:"required,max=200"`
	Content  string `json:"content"  validate:"required"`
	IsPublic *bool  `json:"isPublic"`
}

type UpdateNoteRequest struct {
	Title    *string `json:"title,omitempty"    validate:"omitempty,min=1,max=200"`
	Content  *string `json:"content,omitempty"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type NoteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PublicNoteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	HTML      string    `json:"html"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PaginationResponse struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type NoteListResponse struct {
	Notes      []NoteResponse     `json:"notes"`
	Pagination PaginationResponse `json:"pagination"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:          user.ID.Hex(),
		Username:    user.Username,
		Email:       user.Email,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toAuthResponse(session *usecase.Session) AuthResponse {
	return AuthResponse{
		Token: session.Token,
		User:  toUserResponse(session.User),
	}
}

func toNoteResponse(note *usecase.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		IsPublic:  note.IsPublic,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func toNoteListResponse(page *usecase.NotePage) NoteListResponse {
	notes := make([]NoteResponse, 0, len(page.Notes))
	for _, note := range page.Notes {
		notes = append(notes, toNoteResponse(note))
	}

	return NoteListResponse{
		Notes: notes,
		Pagination: PaginationResponse{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	}
}
