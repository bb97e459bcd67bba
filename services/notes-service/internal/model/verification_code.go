package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// VerificationCode is a one-time password reset code. Only the SHA-256 of the
// code is stored.
type VerificationCode struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Email     string        `bson:"email"`
	CodeHash  string        `bson:"code_hash"`
	Used      bool          `bson:"used"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
