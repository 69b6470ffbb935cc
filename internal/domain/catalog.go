package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is an admin-curated reading item. The PDF itself lives in file storage
// under the key in FileKey.
type Book struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Intro     string             `bson:"intro" json:"intro"`
	FileKey   string             `bson:"fileKey" json:"fileKey"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Podcast is an admin-curated audio item.
type Podcast struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	FileKey     string             `bson:"fileKey" json:"fileKey"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ContentType discriminates generic trainer-published content.
type ContentType string

const (
	ContentVideo    ContentType = "video"
	ContentAudio    ContentType = "audio"
	ContentDocument ContentType = "document"
)

// Content is a standalone content record published by a trainer, visible to
// all clients (unlike Resources, which are addressed to specific clients).
type Content struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        ContentType        `bson:"type" json:"type"`
	FileURL     string             `bson:"fileUrl" json:"fileUrl"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
