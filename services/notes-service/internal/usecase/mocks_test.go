package usecase

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/repository"
	"github.com/vasapolrittideah/notes-api/shared/provider"
)

// --- Mocks ---

type MockUserRepository struct {
	CreateUserFunc        func(user *model.User) (*model.User, error)
	GetUserFunc           func(id string) (*model.User, error)
	GetUserByUsernameFunc func(username string) (*model.User, error)
	GetUserByEmailFunc    func(email string) (*model.User, error)
	UpdateUserFunc        func(id string, params repository.UpdateUserParams) (*model.User, error)
	IsSessionActiveFunc   func(userID, sessionID string) (bool, error)
}

func (m *MockUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(user)
	}
	user.ID = bson.NewObjectID()
	return user, nil
}

func (m *MockUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(id)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockUserRepository) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(username)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockUserRepository) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(id, params)
	}
	objectID, _ := bson.ObjectIDFromHex(id)
	return &model.User{ID: objectID}, nil
}

func (m *MockUserRepository) IsSessionActive(_ context.Context, userID, sessionID string) (bool, error) {
	if m.IsSessionActiveFunc != nil {
		return m.IsSessionActiveFunc(userID, sessionID)
	}
	return true, nil
}

type MockNoteRepository struct {
	CreateNoteFunc     func(note *model.Note) (*model.Note, error)
	GetNoteFunc        func(userID, id string) (*model.Note, error)
	GetPublicNoteFunc  func(id string) (*model.Note, error)
	ListNotesFunc      func(userID string, params repository.FilterNotesParams) ([]*model.Note, int64, error)
	UpdateNoteFunc     func(userID, id string, params repository.UpdateNoteParams) (*model.Note, error)
	TogglePublicFunc   func(userID, id string) (*model.Note, error)
	SoftDeleteNoteFunc func(userID, id string) error
}

func (m *MockNoteRepository) CreateNote(_ context.Context, note *model.Note) (*model.Note, error) {
	if m.CreateNoteFunc != nil {
		return m.CreateNoteFunc(note)
	}
	note.ID = bson.NewObjectID()
	return note, nil
}

func (m *MockNoteRepository) GetNote(_ context.Context, userID, id string) (*model.Note, error) {
	if m.GetNoteFunc != nil {
		return m.GetNoteFunc(userID, id)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockNoteRepository) GetPublicNote(_ context.Context, id string) (*model.Note, error) {
	if m.GetPublicNoteFunc != nil {
		return m.GetPublicNoteFunc(id)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockNoteRepository) ListNotes(
	_ context.Context,
	userID string,
	params repository.FilterNotesParams,
) ([]*model.Note, int64, error) {
	if m.ListNotesFunc != nil {
		return m.ListNotesFunc(userID, params)
	}
	return nil, 0, nil
}

func (m *MockNoteRepository) UpdateNote(
	_ context.Context,
	userID, id string,
	params repository.UpdateNoteParams,
) (*model.Note, error) {
	if m.UpdateNoteFunc != nil {
		return m.UpdateNoteFunc(userID, id, params)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockNoteRepository) TogglePublic(_ context.Context, userID, id string) (*model.Note, error) {
	if m.TogglePublicFunc != nil {
		return m.TogglePublicFunc(userID, id)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockNoteRepository) SoftDeleteNote(_ context.Context, userID, id string) error {
	if m.SoftDeleteNoteFunc != nil {
		return m.SoftDeleteNoteFunc(userID, id)
	}
	return nil
}

type MockSettingRepository struct {
	GetSettingFunc    func(name string) (*model.Setting, error)
	UpsertSettingFunc func(name, value string) (*model.Setting, error)
}

func (m *MockSettingRepository) GetSetting(_ context.Context, name string) (*model.Setting, error) {
	if m.GetSettingFunc != nil {
		return m.GetSettingFunc(name)
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockSettingRepository) UpsertSetting(_ context.Context, name, value string) (*model.Setting, error) {
	if m.UpsertSettingFunc != nil {
		return m.UpsertSettingFunc(name, value)
	}
	return &model.Setting{Name: name, Value: value}, nil
}

type MockEmailSender struct {
	SendFunc func(to, subject, htmlBody string) bool
}

func (m *MockEmailSender) Send(_ context.Context, to, subject, htmlBody string) bool {
	if m.SendFunc != nil {
		return m.SendFunc(to, subject, htmlBody)
	}
	return true
}

type MockLimiter struct {
	ExceededFunc func(key string) (bool, error)
	RegisterFunc func(key string) (bool, error)
	ResetFunc    func(key string) error
}

func (m *MockLimiter) Exceeded(_ context.Context, key string) (bool, error) {
	if m.ExceededFunc != nil {
		return m.ExceededFunc(key)
	}
	return false, nil
}

func (m *MockLimiter) Register(_ context.Context, key string) (bool, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(key)
	}
	return false, nil
}

func (m *MockLimiter) Reset(_ context.Context, key string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(key)
	}
	return nil
}

// countingLimiter counts attempts per key the way the redis limiter does.
type countingLimiter struct {
	max      int64
	mu       sync.Mutex
	attempts map[string]int64
}

func newCountingLimiter(max int64) *countingLimiter {
	return &countingLimiter{max: max, attempts: map[string]int64{}}
}

func (l *countingLimiter) Exceeded(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attempts[key] >= l.max, nil
}

func (l *countingLimiter) Register(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[key]++
	return l.attempts[key] >= l.max, nil
}

func (l *countingLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
	return nil
}

type MockGoogleVerifier struct {
	ValidateIDTokenFunc func(idToken string) (*provider.GoogleIdentity, error)
}

func (m *MockGoogleVerifier) ValidateIDToken(_ context.Context, idToken string) (*provider.GoogleIdentity, error) {
	if m.ValidateIDTokenFunc != nil {
		return m.ValidateIDTokenFunc(idToken)
	}
	return nil, provider.ErrInvalidGoogleAudience
}

type MockRenderer struct {
	RenderFunc func(source string) (string, error)
}

func (m *MockRenderer) Render(source string) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(source)
	}
	return "<p>" + source + "</p>", nil
}

// fakeCodeStore applies the consume filter under a lock, like the single
// document update the database performs.
type fakeCodeStore struct {
	mu    sync.Mutex
	codes []*model.VerificationCode
}

func (s *fakeCodeStore) CreateCode(_ context.Context, code *model.VerificationCode) (*model.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code.ID = bson.NewObjectID()
	code.Used = false
	s.codes = append(s.codes, code)
	return code, nil
}

func (s *fakeCodeStore) InvalidateUserCodes(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, code := range s.codes {
		if code.UserID.Hex() == userID {
			code.Used = true
		}
	}
	return nil
}

func (s *fakeCodeStore) ConsumeCode(
	_ context.Context,
	email, codeHash string,
	now time.Time,
) (*model.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, code := range s.codes {
		if code.Email == email && code.CodeHash == codeHash && !code.Used && code.ExpiresAt.After(now) {
			code.Used = true
			consumed := *code
			return &consumed, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeCodeStore) unused() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, code := range s.codes {
		if !code.Used {
			n++
		}
	}
	return n
}
