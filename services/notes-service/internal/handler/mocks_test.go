package handler

import (
	"context"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/usecase"
)

type MockAuthUsecase struct {
	RegisterFunc        func(ctx context.Context, params usecase.RegisterParams) (*usecase.Session, error)
	LoginFunc           func(ctx context.Context, params usecase.LoginParams) (*usecase.Session, error)
	LoginWithGoogleFunc func(ctx context.Context, idToken string) (*usecase.Session, error)
	LogoutFunc          func(ctx context.Context, userID string) error
}

func (m *MockAuthUsecase) Register(ctx context.Context, params usecase.RegisterParams) (*usecase.Session, error) {
	return m.RegisterFunc(ctx, params)
}

func (m *MockAuthUsecase) Login(ctx context.Context, params usecase.LoginParams) (*usecase.Session, error) {
	return m.LoginFunc(ctx, params)
}

func (m *MockAuthUsecase) LoginWithGoogle(ctx context.Context, idToken string) (*usecase.Session, error) {
	return m.LoginWithGoogleFunc(ctx, idToken)
}

func (m *MockAuthUsecase) Logout(ctx context.Context, userID string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, userID)
}

type MockPasswordResetUsecase struct {
	SendCodeFunc   func(ctx context.Context, email string) error
	VerifyCodeFunc func(ctx context.Context, params usecase.VerifyCodeParams) error
}

func (m *MockPasswordResetUsecase) SendCode(ctx context.Context, email string) error {
	if m.SendCodeFunc == nil {
		return nil
	}
	return m.SendCodeFunc(ctx, email)
}

func (m *MockPasswordResetUsecase) VerifyCode(ctx context.Context, params usecase.VerifyCodeParams) error {
	if m.VerifyCodeFunc == nil {
		return nil
	}
	return m.VerifyCodeFunc(ctx, params)
}

type MockProfileUsecase struct {
	GetProfileFunc     func(ctx context.Context, userID string) (*model.User, error)
	UpdateProfileFunc  func(ctx context.Context, userID string, params usecase.UpdateProfileParams) (*model.User, error)
	ReplaceProfileFunc func(ctx context.Context, userID string, params usecase.ReplaceProfileParams) (*model.User, error)
}

func (m *MockProfileUsecase) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return m.GetProfileFunc(ctx, userID)
}

func (m *MockProfileUsecase) UpdateProfile(
	ctx context.Context,
	userID string,
	params usecase.UpdateProfileParams,
) (*model.User, error) {
	return m.UpdateProfileFunc(ctx, userID, params)
}

func (m *MockProfileUsecase) ReplaceProfile(
	ctx context.Context,
	userID string,
	params usecase.ReplaceProfileParams,
) (*model.User, error) {
	return m.ReplaceProfileFunc(ctx, userID, params)
}

type MockNoteUsecase struct {
	CreateNoteFunc    func(ctx context.Context, userID string, params usecase.CreateNoteParams) (*usecase.Note, error)
	ListNotesFunc     func(ctx context.Context, userID string, params usecase.ListNotesParams) (*usecase.NotePage, error)
	ListAllNotesFunc  func(ctx context.Context, userID string) ([]*usecase.Note, error)
	GetNoteFunc       func(ctx context.Context, userID, id string) (*usecase.Note, error)
	UpdateNoteFunc    func(ctx context.Context, userID, id string, params usecase.UpdateNoteParams) (*usecase.Note, error)
	TogglePublicFunc  func(ctx context.Context, userID, id string) (*usecase.Note, error)
	DeleteNoteFunc    func(ctx context.Context, userID, id string) error
	GetPublicNoteFunc func(ctx context.Context, id string) (*usecase.PublicNote, error)
}

func (m *MockNoteUsecase) CreateNote(
	ctx context.Context,
	userID string,
	params usecase.CreateNoteParams,
) (*usecase.Note, error) {
	return m.CreateNoteFunc(ctx, userID, params)
}

func (m *MockNoteUsecase) ListNotes(
	ctx context.Context,
	userID string,
	params usecase.ListNotesParams,
) (*usecase.NotePage, error) {
	return m.ListNotesFunc(ctx, userID, params)
}

func (m *MockNoteUsecase) ListAllNotes(ctx context.Context, userID string) ([]*usecase.Note, error) {
	return m.ListAllNotesFunc(ctx, userID)
}

func (m *MockNoteUsecase) GetNote(ctx context.Context, userID, id string) (*usecase.Note, error) {
	return m.GetNoteFunc(ctx, userID, id)
}

func (m *MockNoteUsecase) UpdateNote(
	ctx context.Context,
	userID, id string,
	params usecase.UpdateNoteParams,
) (*usecase.Note, error) {
	return m.UpdateNoteFunc(ctx, userID, id, params)
}

func (m *MockNoteUsecase) TogglePublic(ctx context.Context, userID, id string) (*usecase.Note, error) {
	return m.TogglePublicFunc(ctx, userID, id)
}

func (m *MockNoteUsecase) DeleteNote(ctx context.Context, userID, id string) error {
	return m.DeleteNoteFunc(ctx, userID, id)
}

func (m *MockNoteUsecase) GetPublicNote(ctx context.Context, id string) (*usecase.PublicNote, error) {
	return m.GetPublicNoteFunc(ctx, id)
}
