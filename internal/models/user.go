package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered visitor. Local users carry Username and PasswordHash,
// Google users carry GoogleID. Secret stays empty until the user submits one.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username,omitempty" json:"username,omitempty"`
	PasswordHash string             `bson:"password,omitempty" json:"-"`
	GoogleID     string             `bson:"googleId,omitempty" json:"googleId,omitempty"`
	Secret       string             `bson:"secret,omitempty" json:"secret,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName is the username for local users and the id hex otherwise.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.ID.Hex()
}

// HasSecret reports whether the user has disclosed a secret.
func (u *User) HasSecret() bool {
	return u.Secret != ""
}
