package mongo

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const clientCollectionName = "clients"

// mongoClientRepository implements the repository.ClientRepository interface using MongoDB.
type mongoClientRepository struct {
	collection *mongo.Collection
}

// NewMongoClientRepository creates a new instance of mongoClientRepository.
// It expects a connected *mongo.Database instance.
func NewMongoClientRepository(db *mongo.Database) repository.ClientRepository {
	return &mongoClientRepository{
		collection: db.Collection(clientCollectionName),
	}
}

// Create inserts a new client into the database.
func (r *mongoClientRepository) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	if client.Email == "" || client.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("client email and password hash are required")
	}

	client.ID = primitive.NewObjectID()
	client.Email = strings.ToLower(strings.TrimSpace(client.Email))
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves a client by email address.
func (r *mongoClientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	var client domain.Client
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}

	err := r.collection.FindOne(ctx, filter).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// GetByID retrieves a client by its MongoDB ObjectID.
func (r *mongoClientRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	var client domain.Client
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// GetAll retrieves every client, newest first. Used by the admin dashboard.
func (r *mongoClientRepository) GetAll(ctx context.Context) ([]domain.Client, error) {
	var clients []domain.Client
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}

// SetCurrentTrainer sets the client's active assignment.
func (r *mongoClientRepository) SetCurrentTrainer(ctx context.Context, clientID primitive.ObjectID, trainer domain.CurrentTrainer) error {
	filter := bson.M{"_id": clientID}
	update := bson.M{
		"$set": bson.M{
			"currentTrainer": trainer,
			"updatedAt":      time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddConnection appends an entry to the client's connection history.
func (r *mongoClientRepository) AddConnection(ctx context.Context, clientID primitive.ObjectID, conn domain.TrainerConnection) error {
	filter := bson.M{"_id": clientID}
	update := bson.M{
		"$push": bson.M{"connectedTrainers": conn},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureClientIndexes creates necessary indexes for the clients collection.
// Call this once during application startup.
func EnsureClientIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "currentTrainer.trainerId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("ERROR: Failed to create client indexes: %v", err)
	}
}
