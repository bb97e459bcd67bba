package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/repository"
)

// NoteUsecase defines the business logic for a user's encrypted notes.
type NoteUsecase interface {
	CreateNote(ctx context.Context, userID string, params CreateNoteParams) (*Note, error)
	ListNotes(ctx context.Context, userID string, params ListNotesParams) (*NotePage, error)
	ListAllNotes(ctx context.Context, userID string) ([]*Note, error)
	GetNote(ctx context.Context, userID, id string) (*Note, error)
	UpdateNote(ctx context.Context, userID, id string, params UpdateNoteParams) (*Note, error)
	TogglePublic(ctx context.Context, userID, id string) (*Note, error)
	DeleteNote(ctx context.Context, userID, id string) error

	// GetPublicNote returns a public note to anyone, with its content rendered to HTML.
	GetPublicNote(ctx context.Context, id string) (*PublicNote, error)
}

// FieldCipher seals and opens note fields.
type FieldCipher interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// MarkdownRenderer turns Markdown into safe HTML.
type MarkdownRenderer interface {
	Render(source string) (string, error)
}

// Note is a decrypted note.
type Note struct {
	ID        string
	Title     string
	Content   string
	IsPublic  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicNote is a public note with its rendered content.
type PublicNote struct {
	Note
	HTML string
}

// NotePage is one page of a user's notes.
type NotePage struct {
	Notes []*Note
	Page  int64
	Limit int64
	Total int64
	Pages int64
}

// CreateNoteParams defines the parameters for creating a note.
// A nil IsPublic stores a private note.
type CreateNoteParams struct {
	Title    string
	Content  string
	IsPublic *bool
}

// ListNotesParams defines paging and search. Zero values select the defaults.
type ListNotesParams struct {
	Page   int64
	Limit  int64
	Search string
}

// UpdateNoteParams defines the optional fields of a note update.
type UpdateNoteParams struct {
	Title    *string
	Content  *string
	IsPublic *bool
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type noteUsecase struct {
	noteRepo repository.NoteRepository
	cipher   FieldCipher
	renderer MarkdownRenderer
}

func NewNoteUsecase(noteRepo repository.NoteRepository, cipher FieldCipher, renderer MarkdownRenderer) NoteUsecase {
	return &noteUsecase{
		noteRepo: noteRepo,
		cipher:   cipher,
		renderer: renderer,
	}
}

func (u *noteUsecase) CreateNote(ctx context.Context, userID string, params CreateNoteParams) (*Note, error) {
	ownerID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	title, err := u.seal(params.Title)
	if err != nil {
		return nil, err
	}
	content, err := u.seal(params.Content)
	if err != nil {
		return nil, err
	}

	note, err := u.noteRepo.CreateNote(ctx, &model.Note{
		UserID:   ownerID,
		Title:    title,
		Content:  content,
		IsPublic: params.IsPublic != nil && *params.IsPublic,
	})
	if err != nil {
		return nil, err
	}

	return u.open(note)
}

func (u *noteUsecase) ListNotes(ctx context.Context, userID string, params ListNotesParams) (*NotePage, error) {
	page, limit := params.Page, params.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	search := strings.ToLower(strings.TrimSpace(params.Search))
	if search == "" {
		stored, total, err := u.noteRepo.ListNotes(ctx, userID, repository.FilterNotesParams{
			Limit:  limit,
			Offset: (page - 1) * limit,
		})
		if err != nil {
			return nil, u.notFound(err)
		}

		notes, err := u.openAll(stored)
		if err != nil {
			return nil, err
		}

		return newNotePage(notes, page, limit, total), nil
	}

	// Fields are sealed, so matching happens after decryption.
	stored, _, err := u.noteRepo.ListNotes(ctx, userID, repository.FilterNotesParams{})
	if err != nil {
		return nil, u.notFound(err)
	}

	all, err := u.openAll(stored)
	if err != nil {
		return nil, err
	}

	matched := make([]*Note, 0, len(all))
	for _, note := range all {
		if strings.Contains(strings.ToLower(note.Title), search) ||
			strings.Contains(strings.ToLower(note.Content), search) {
			matched = append(matched, note)
		}
	}

	total := int64(len(matched))
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	return newNotePage(matched[start:end], page, limit, total), nil
}

func (u *noteUsecase) ListAllNotes(ctx context.Context, userID string) ([]*Note, error) {
	stored, _, err := u.noteRepo.ListNotes(ctx, userID, repository.FilterNotesParams{})
	if err != nil {
		return nil, u.notFound(err)
	}

	return u.openAll(stored)
}

func (u *noteUsecase) GetNote(ctx context.Context, userID, id string) (*Note, error) {
	note, err := u.noteRepo.GetNote(ctx, userID, id)
	if err != nil {
		return nil, u.notFound(err)
	}

	return u.open(note)
}

func (u *noteUsecase) UpdateNote(ctx context.Context, userID, id string, params UpdateNoteParams) (*Note, error) {
	update := repository.UpdateNoteParams{IsPublic: params.IsPublic}
	if params.Title != nil {
		title, err := u.seal(*params.Title)
		if err != nil {
			return nil, err
		}
		update.Title = &title
	}
	if params.Content != nil {
		content, err := u.seal(*params.Content)
		if err != nil {
			return nil, err
		}
		update.Content = &content
	}

	note, err := u.noteRepo.UpdateNote(ctx, userID, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrNothingToUpdate) {
			return u.GetNote(ctx, userID, id)
		}
		return nil, u.notFound(err)
	}

	return u.open(note)
}

func (u *noteUsecase) TogglePublic(ctx context.Context, userID, id string) (*Note, error) {
	note, err := u.noteRepo.TogglePublic(ctx, userID, id)
	if err != nil {
		return nil, u.notFound(err)
	}

	return u.open(note)
}

func (u *noteUsecase) DeleteNote(ctx context.Context, userID, id string) error {
	if err := u.noteRepo.SoftDeleteNote(ctx, userID, id); err != nil {
		return u.notFound(err)
	}

	return nil
}

func (u *noteUsecase) GetPublicNote(ctx context.Context, id string) (*PublicNote, error) {
	stored, err := u.noteRepo.GetPublicNote(ctx, id)
	if err != nil {
		return nil, u.notFound(err)
	}

	note, err := u.open(stored)
	if err != nil {
		return nil, err
	}

	html, err := u.renderer.Render(note.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to render note: %w", err)
	}

	return &PublicNote{Note: *note, HTML: html}, nil
}

func (u *noteUsecase) notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, repository.ErrInvalidID) {
		return ErrNoteNotFound
	}
	return err
}

func (u *noteUsecase) seal(value string) (string, error) {
	sealed, err := u.cipher.Seal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFieldCrypto, err)
	}
	return sealed, nil
}

func (u *noteUsecase) open(note *model.Note) (*Note, error) {
	title, err := u.cipher.Open(note.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: note %s title: %w", ErrFieldCrypto, note.ID.Hex(), err)
	}
	content, err := u.cipher.Open(note.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: note %s content: %w", ErrFieldCrypto, note.ID.Hex(), err)
	}

	return &Note{
		ID:        note.ID.Hex(),
		Title:     title,
		Content:   content,
		IsPublic:  note.IsPublic,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}, nil
}

func (u *noteUsecase) openAll(stored []*model.Note) ([]*Note, error) {
	notes := make([]*Note, 0, len(stored))
	for _, note := range stored {
		opened, err := u.open(note)
		if err != nil {
			return nil, err
		}
		notes = append(notes, opened)
	}
	return notes, nil
}

func newNotePage(notes []*Note, page, limit, total int64) *NotePage {
	return &NotePage{
		Notes: notes,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}
}
