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

// SettingRepository stores named runtime settings.
type SettingRepository interface {
	GetSetting(ctx context.Context, name string) (*model.Setting, error)
	UpsertSetting(ctx context.Context, name, value string) (*model.Setting, error)
}

const settingCollection = "Settings"

type settingMongoRepository struct {
	db *mongo.Database
}

func NewSettingMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) SettingRepository {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := db.Collection(settingCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create setting indexes")
	}

	return &settingMongoRepository{db: db}
}

func (r *settingMongoRepository) GetSetting(ctx context.Context, name string) (*model.Setting, error) {
	var setting model.Setting
	if err := r.db.Collection(settingCollection).FindOne(ctx, bson.M{"name": name}).Decode(&setting); err != nil {
		return nil, err
	}

	return &setting, nil
}

func (r *settingMongoRepository) UpsertSetting(ctx context.Context, name, value string) (*model.Setting, error) {
	now := time.Now()

	var setting model.Setting
	err := r.db.Collection(settingCollection).FindOneAndUpdate(
		ctx,
		bson.M{"name": name},
		bson.M{
			"$set":         bson.M{"value": value, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&setting)
	if err != nil {
		return nil, err
	}

	return &setting, nil
}
