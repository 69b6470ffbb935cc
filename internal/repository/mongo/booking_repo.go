package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const bookingCollectionName = "bookings"

// mongoBookingRepository implements repository.BookingRepository.
type mongoBookingRepository struct {
	collection *mongo.Collection
}

// NewMongoBookingRepository creates a new Booking repository backed by MongoDB.
func NewMongoBookingRepository(db *mongo.Database) repository.BookingRepository {
	return &mongoBookingRepository{
		collection: db.Collection(bookingCollectionName),
	}
}

// Create inserts a new booking.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error) {
	if booking.ClientID == primitive.NilObjectID || booking.TrainerID == primitive.NilObjectID || booking.Plan == "" {
		return primitive.NilObjectID, errors.New("booking client ID, trainer ID and plan are required")
	}

	booking.ID = primitive.NewObjectID()
	if booking.PaymentStatus == "" {
		booking.PaymentStatus = domain.PaymentPending
	}
	booking.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByClientID returns the client's bookings, newest first.
func (r *mongoBookingRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Booking, error) {
	return r.find(ctx, bson.M{"clientId": clientID})
}

// GetByTrainerID returns the trainer's bookings, newest first.
func (r *mongoBookingRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Booking, error) {
	return r.find(ctx, bson.M{"trainerId": trainerID})
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M) ([]domain.Booking, error) {
	var bookings []domain.Booking
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// EnsureBookingIndexes creates necessary indexes for the bookings collection.
func EnsureBookingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("ERROR: Failed to create booking indexes: %v", err)
	}
}
