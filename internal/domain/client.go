package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConnectionStatus tracks the lifecycle of a client/trainer relationship
// as seen from the client side.
type ConnectionStatus string

const (
	ConnectionPending      ConnectionStatus = "Pending"
	ConnectionConnected    ConnectionStatus = "Connected"
	ConnectionDisconnected ConnectionStatus = "Disconnected"
)

// CurrentTrainer is the single active assignment of a client.
// The trainer name is denormalized so profile reads don't need a second lookup.
type CurrentTrainer struct {
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	TrainerName string             `bson:"trainerName" json:"trainerName"`
	AssignedAt  time.Time          `bson:"assignedAt" json:"assignedAt"`
}

// TrainerConnection is one entry in a client's connection history.
// Distinct from CurrentTrainer: history is append-only and survives
// disconnection.
type TrainerConnection struct {
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	ConnectedAt time.Time          `bson:"connectedAt" json:"connectedAt"`
	Status      ConnectionStatus   `bson:"connectionStatus" json:"connectionStatus"`
}

// Client represents a coaching client.
type Client struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique, stored lowercased
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// At most one active assignment at a time. Pointer so an unassigned
	// client serializes without the field.
	CurrentTrainer *CurrentTrainer `bson:"currentTrainer,omitempty" json:"currentTrainer,omitempty"`

	// History of trainer relationships, including past ones.
	ConnectedTrainers []TrainerConnection `bson:"connectedTrainers,omitempty" json:"connectedTrainers,omitempty"`
}

// HasTrainer reports whether the client currently has an active assignment.
func (c *Client) HasTrainer() bool {
	return c.CurrentTrainer != nil && c.CurrentTrainer.TrainerID != primitive.NilObjectID
}

// IsAssignedTo reports whether the client's active assignment targets the
// given trainer.
func (c *Client) IsAssignedTo(trainerID primitive.ObjectID) bool {
	return c.HasTrainer() && c.CurrentTrainer.TrainerID == trainerID
}
