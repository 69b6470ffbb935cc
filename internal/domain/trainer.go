package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is a trainer's admin-approval workflow state.
type RequestStatus string

const (
	RequestNotSent  RequestStatus = "Not Sent"
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
)

// DefaultMaxClientCapacity is applied at signup when no capacity is configured.
const DefaultMaxClientCapacity = 10

// ResourceType discriminates trainer resources.
type ResourceType string

const (
	ResourceVideo   ResourceType = "video"
	ResourceMeeting ResourceType = "meeting"
)

// Resource is a content item a trainer shares with a subset of its clients.
// Resources are embedded in the trainer document.
type Resource struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Type        ResourceType         `bson:"type" json:"type"`
	Content     string               `bson:"content" json:"content"` // URL, stored object key, or meeting link
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	AssignedTo  []primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
}

// IsAssignedTo reports whether the resource is addressed to the given client.
func (r *Resource) IsAssignedTo(clientID primitive.ObjectID) bool {
	for _, id := range r.AssignedTo {
		if id == clientID {
			return true
		}
	}
	return false
}

// ClientConnection is the trainer-side record of a client relationship.
type ClientConnection struct {
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	Status      ConnectionStatus   `bson:"status" json:"status"`
	ConnectedAt time.Time          `bson:"connectedAt" json:"connectedAt"`
}

// Trainer represents a coach who can take on clients once approved.
type Trainer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Contact      string             `bson:"contact" json:"contact"`
	Experience   string             `bson:"experience" json:"experience"`
	Certificate  string             `bson:"certificate" json:"certificate"` // Stored object key

	RequestStatus RequestStatus `bson:"requestStatus" json:"requestStatus"`

	MaxClientCapacity  int                  `bson:"maxClientCapacity" json:"maxClientCapacity"`
	CurrentClientCount int                  `bson:"currentClientCount" json:"currentClientCount"`
	AssignedClients    []primitive.ObjectID `bson:"assignedClients,omitempty" json:"assignedClients,omitempty"`
	Connections        []ClientConnection   `bson:"connections,omitempty" json:"connections,omitempty"`

	Resources []Resource `bson:"resources,omitempty" json:"resources,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsApproved is derived from RequestStatus and never stored, so it cannot go
// stale relative to its source field.
func (t *Trainer) IsApproved() bool {
	return t.RequestStatus == RequestApproved
}

// IsAvailable reports whether the trainer can take on another client.
// Derived from the capacity fields, never stored.
func (t *Trainer) IsAvailable() bool {
	return t.CurrentClientCount < t.MaxClientCapacity
}

// HasAssignedClient reports whether the client is on the trainer's roster.
func (t *Trainer) HasAssignedClient(clientID primitive.ObjectID) bool {
	for _, id := range t.AssignedClients {
		if id == clientID {
			return true
		}
	}
	return false
}

// ResourceByID returns the embedded resource with the given id, or nil.
func (t *Trainer) ResourceByID(resourceID primitive.ObjectID) *Resource {
	for i := range t.Resources {
		if t.Resources[i].ID == resourceID {
			return &t.Resources[i]
		}
	}
	return nil
}
