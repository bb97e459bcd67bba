package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
)

// NoteRepository defines the interface for note operations. Every lookup
// ignores soft-deleted notes.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.Note) (*model.Note, error)
	GetNote(ctx context.Context, userID, id string) (*model.Note, error)
	GetPublicNote(ctx context.Context, id string) (*model.Note, error)
	ListNotes(ctx context.Context, userID string, params FilterNotesParams) ([]*model.Note, int64, error)
	UpdateNote(ctx context.Context, userID, id string, params UpdateNoteParams) (*model.Note, error)
	TogglePublic(ctx context.Context, userID, id string) (*model.Note, error)
	SoftDeleteNote(ctx context.Context, userID, id string) error
}

// FilterNotesParams pages through a user's notes, newest update first.
// A zero Limit returns every note.
type FilterNotesParams struct {
	Limit  int64
	Offset int64
}

// UpdateNoteParams defines the optional parameters for updating a note.
// Only the fields that are not nil will be updated.
type UpdateNoteParams struct {
	Title    *string
	Content  *string
	IsPublic *bool
}

const noteCollection = "Notes"

var notDeleted = bson.M{"$exists": false}

type noteMongoRepository struct {
	db *mongo.Database
}

func NewNoteMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) NoteRepository {
	collection := db.Collection(noteCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create note indexes")
	}

	return &noteMongoRepository{db: db}
}

func (r *noteMongoRepository) CreateNote(ctx context.Context, note *model.Note) (*model.Note, error) {
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	result, err := r.db.Collection(noteCollection).InsertOne(ctx, note)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		note.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return note, nil
}

func (r *noteMongoRepository) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	filter, err := ownedNoteFilter(userID, id)
	if err != nil {
		return nil, err
	}

	var note model.Note
	if err := r.db.Collection(noteCollection).FindOne(ctx, filter).Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}

func (r *noteMongoRepository) GetPublicNote(ctx context.Context, id string) (*model.Note, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	filter := bson.M{"_id": objectID, "is_public": true, "deleted_at": notDeleted}

	var note model.Note
	if err := r.db.Collection(noteCollection).FindOne(ctx, filter).Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}

func (r *noteMongoRepository) ListNotes(
	ctx context.Context,
	userID string,
	params FilterNotesParams,
) ([]*model.Note, int64, error) {
	ownerID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, 0, ErrInvalidID
	}

	filter := bson.M{"user_id": ownerID, "deleted_at": notDeleted}
	collection := r.db.Collection(noteCollection)

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})
	if params.Limit > 0 {
		findOptions.SetLimit(params.Limit)
	}
	if params.Offset > 0 {
		findOptions.SetSkip(params.Offset)
	}

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notes := make([]*model.Note, 0)
	for cursor.Next(ctx) {
		var note model.Note
		if err := cursor.Decode(&note); err != nil {
			return nil, 0, err
		}
		notes = append(notes, &note)
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}

func (r *noteMongoRepository) UpdateNote(
	ctx context.Context,
	userID, id string,
	params UpdateNoteParams,
) (*model.Note, error) {
	filter, err := ownedNoteFilter(userID, id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Content != nil {
		updateMap["content"] = *params.Content
	}
	if params.IsPublic != nil {
		updateMap["is_public"] = *params.IsPublic
	}

	if len(updateMap) == 0 {
		return nil, ErrNothingToUpdate
	}

	updateMap["updated_at"] = time.Now()

	return r.findOneAndUpdate(ctx, filter, bson.M{"$set": updateMap})
}

func (r *noteMongoRepository) TogglePublic(ctx context.Context, userID, id string) (*model.Note, error) {
	filter, err := ownedNoteFilter(userID, id)
	if err != nil {
		return nil, err
	}

	// Pipeline update flips the flag server-side in one write.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "is_public", Value: bson.D{{Key: "$not", Value: bson.A{"$is_public"}}}},
			{Key: "updated_at", Value: time.Now()},
		}}},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *noteMongoRepository) SoftDeleteNote(ctx context.Context, userID, id string) error {
	filter, err := ownedNoteFilter(userID, id)
	if err != nil {
		return err
	}

	now := time.Now()
	result, err := r.db.Collection(noteCollection).UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"deleted_at": now, "updated_at": now},
	})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *noteMongoRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update any) (*model.Note, error) {
	var note model.Note
	err := r.db.Collection(noteCollection).FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&note)
	if err != nil {
		return nil, err
	}

	return &note, nil
}

func ownedNoteFilter(userID, id string) (bson.M, error) {
	ownerID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	noteID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	return bson.M{"_id": noteID, "user_id": ownerID, "deleted_at": notDeleted}, nil
}
