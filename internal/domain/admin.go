package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a platform administrator account. Admins are seeded from
// configuration at startup, never self-registered.
type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
