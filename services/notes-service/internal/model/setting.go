package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	SettingEmailAddress  = "EMAIL_ADDRESS"
	SettingEmailPassword = "EMAIL_PASSWORD"
)

// Setting is a named runtime value. Value holds sealed ciphertext.
type Setting struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Value     string        `bson:"value"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
