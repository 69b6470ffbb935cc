package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus for bookings.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
)

// Booking records a client purchasing a coaching plan with a trainer.
type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID      primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID     primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Plan          string             `bson:"plan" json:"plan"` // e.g. "Basic", "Premium"
	PaymentStatus PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	ScheduleLink  string             `bson:"scheduleLink,omitempty" json:"scheduleLink,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
