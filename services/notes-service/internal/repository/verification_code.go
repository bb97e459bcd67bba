package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/model"
)

// VerificationCodeRepository defines the interface for one-time code operations.
type VerificationCodeRepository interface {
	// CreateCode stores a new unused code.
	CreateCode(ctx context.Context, code *model.VerificationCode) (*model.VerificationCode, error)

	// InvalidateUserCodes marks every unused code of a user as used.
	InvalidateUserCodes(ctx context.Context, userID string) error

	// ConsumeCode atomically marks the matching unused, unexpired code as used
	// and returns it. mongo.ErrNoDocuments means no code qualified.
	ConsumeCode(ctx context.Context, email, codeHash string, now time.Time) (*model.VerificationCode, error)
}

const verificationCodeCollection = "Codes"

type verificationCodeMongoRepository struct {
	db *mongo.Database
}

// NewVerificationCodeMongoRepository creates a new MongoDB repository for verification codes.
func NewVerificationCodeMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) VerificationCodeRepository {
	collection := db.Collection(verificationCodeCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}, {Key: "code_hash", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create verification code indexes")
	}

	return &verificationCodeMongoRepository{
		db: db,
	}
}

func (r *verificationCodeMongoRepository) CreateCode(
	ctx context.Context,
	code *model.VerificationCode,
) (*model.VerificationCode, error) {
	now := time.Now()
	code.CreatedAt = now
	code.UpdatedAt = now
	code.Used = false

	result, err := r.db.Collection(verificationCodeCollection).InsertOne(ctx, code)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		code.ID = objectID
	}

	return code, nil
}

func (r *verificationCodeMongoRepository) InvalidateUserCodes(ctx context.Context, userID string) error {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}

	filter := bson.M{
		"user_id": objectID,
		"used":    false,
	}
	update := bson.M{
		"$set": bson.M{
			"used":       true,
			"updated_at": time.Now(),
		},
	}

	_, err = r.db.Collection(verificationCodeCollection).UpdateMany(ctx, filter, update)
	return err
}

func (r *verificationCodeMongoRepository) ConsumeCode(
	ctx context.Context,
	email, codeHash string,
	now time.Time,
) (*model.VerificationCode, error) {
	filter := bson.M{
		"email":      email,
		"code_hash":  codeHash,
		"used":       false,
		"expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"used":       true,
			"updated_at": now,
		},
	}

	var code model.VerificationCode
	err := r.db.Collection(verificationCodeCollection).FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&code)
	if err != nil {
		return nil, err
	}

	return &code, nil
}
