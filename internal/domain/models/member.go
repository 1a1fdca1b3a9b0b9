// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a contributing member of the group.
//
// Passwords are stored as bcrypt hashes. Earlier data may still carry a
// legacy plaintext "password" field; the login handler migrates those to
// a hash on first successful login.
type Member struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID primitive.ObjectID `bson:"groupId" json:"groupId"`
	Name    string             `bson:"name" json:"name"`

	Username   string `bson:"username" json:"username"`
	UsernameCI string `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped; unique

	PasswordHash   string `bson:"passwordHash" json:"-"`
	LegacyPassword string `bson:"password,omitempty" json:"-"` // plaintext from old data, cleared on migration

	// MustChangePassword forces a password change on first login
	// (members are created with an admin-issued temporary password).
	MustChangePassword bool `bson:"mustChangePassword" json:"mustChangePassword"`

	// Email is optional; when present the notification side-channel also
	// sends a best-effort email on payment decisions.
	Email string `bson:"email,omitempty" json:"email,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
