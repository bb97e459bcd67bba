package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Note is a stored note. Title and Content hold sealed ciphertext.
type Note struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Title     string        `bson:"title"`
	Content   string        `bson:"content"`
	IsPublic  bool          `bson:"is_public"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
	DeletedAt *time.Time    `bson:"deleted_at,omitempty"`
}
