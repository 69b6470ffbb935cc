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

const trainerCollectionName = "trainers"

// mongoTrainerRepository implements repository.TrainerRepository.
type mongoTrainerRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainerRepository creates a new Trainer repository backed by MongoDB.
func NewMongoTrainerRepository(db *mongo.Database) repository.TrainerRepository {
	return &mongoTrainerRepository{
		collection: db.Collection(trainerCollectionName),
	}
}

// availableFilter matches trainers that are Approved and under capacity.
// Capacity comparison is done field-to-field with $expr, so the filter stays
// correct whatever the per-trainer capacity is.
func availableFilter() bson.M {
	return bson.M{
		"requestStatus": domain.RequestApproved,
		"$expr":         bson.M{"$lt": bson.A{"$currentClientCount", "$maxClientCapacity"}},
	}
}

// Create inserts a new trainer into the database.
func (r *mongoTrainerRepository) Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error) {
	if trainer.Email == "" || trainer.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("trainer email and password hash are required")
	}

	trainer.ID = primitive.NewObjectID()
	trainer.Email = strings.ToLower(strings.TrimSpace(trainer.Email))
	if trainer.RequestStatus == "" {
		trainer.RequestStatus = domain.RequestNotSent
	}
	if trainer.MaxClientCapacity <= 0 {
		trainer.MaxClientCapacity = domain.DefaultMaxClientCapacity
	}
	now := time.Now().UTC()
	trainer.CreatedAt = now
	trainer.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, trainer)
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

// GetByEmail retrieves a trainer by email address.
func (r *mongoTrainerRepository) GetByEmail(ctx context.Context, email string) (*domain.Trainer, error) {
	var trainer domain.Trainer
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}

	err := r.collection.FindOne(ctx, filter).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

// GetByID retrieves a trainer by its MongoDB ObjectID.
func (r *mongoTrainerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	var trainer domain.Trainer
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

// FindMostRecentAvailable returns the newest Approved trainer that is still
// under capacity. Newest-first is the assignment policy: freshly approved
// trainers get clients before older, partially loaded ones.
func (r *mongoTrainerRepository) FindMostRecentAvailable(ctx context.Context) (*domain.Trainer, error) {
	var trainer domain.Trainer
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	err := r.collection.FindOne(ctx, availableFilter(), findOptions).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

// FindAvailable returns all Approved trainers under capacity, newest first.
func (r *mongoTrainerRepository) FindAvailable(ctx context.Context) ([]domain.Trainer, error) {
	return r.find(ctx, availableFilter())
}

// FindByRequestStatus returns trainers in the given approval state.
func (r *mongoTrainerRepository) FindByRequestStatus(ctx context.Context, status domain.RequestStatus) ([]domain.Trainer, error) {
	return r.find(ctx, bson.M{"requestStatus": status})
}

// FindWithResourcesAssignedTo returns trainers holding at least one resource
// addressed to the client.
func (r *mongoTrainerRepository) FindWithResourcesAssignedTo(ctx context.Context, clientID primitive.ObjectID) ([]domain.Trainer, error) {
	return r.find(ctx, bson.M{"resources.assignedTo": clientID})
}

func (r *mongoTrainerRepository) find(ctx context.Context, filter bson.M) ([]domain.Trainer, error) {
	var trainers []domain.Trainer
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &trainers); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return trainers, nil
}

// SetRequestStatus updates the trainer's approval workflow state.
func (r *mongoTrainerRepository) SetRequestStatus(ctx context.Context, trainerID primitive.ObjectID, status domain.RequestStatus) error {
	filter := bson.M{"_id": trainerID}
	update := bson.M{
		"$set": bson.M{
			"requestStatus": status,
			"updatedAt":     time.Now().UTC(),
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

// AddAssignedClient puts the client on the trainer's roster, records the
// connection and bumps the client count in a single document update. The
// filter re-checks capacity and roster membership so a concurrent assignment
// cannot push the trainer over its limit or double-count a client.
func (r *mongoTrainerRepository) AddAssignedClient(ctx context.Context, trainerID, clientID primitive.ObjectID, conn domain.ClientConnection) error {
	filter := bson.M{
		"_id":             trainerID,
		"assignedClients": bson.M{"$ne": clientID},
		"$expr":           bson.M{"$lt": bson.A{"$currentClientCount", "$maxClientCapacity"}},
	}
	update := bson.M{
		"$addToSet": bson.M{"assignedClients": clientID},
		"$push":     bson.M{"connections": conn},
		"$inc":      bson.M{"currentClientCount": 1},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Trainer missing, already on the roster, or at capacity.
		return repository.ErrUpdateFailed
	}
	return nil
}

// AddResource appends a resource to the trainer's embedded resource list.
func (r *mongoTrainerRepository) AddResource(ctx context.Context, trainerID primitive.ObjectID, resource domain.Resource) error {
	filter := bson.M{"_id": trainerID}
	update := bson.M{
		"$push": bson.M{"resources": resource},
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

// RemoveResource removes the resource with the given id from the trainer's
// list. Returns ErrNotFound when the trainer has no such resource, leaving
// the list untouched.
func (r *mongoTrainerRepository) RemoveResource(ctx context.Context, trainerID, resourceID primitive.ObjectID) error {
	filter := bson.M{"_id": trainerID, "resources._id": resourceID}
	update := bson.M{
		"$pull": bson.M{"resources": bson.M{"_id": resourceID}},
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

// EnsureTrainerIndexes creates necessary indexes for the trainers collection.
// Call this once during application startup.
func EnsureTrainerIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "requestStatus", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "resources.assignedTo", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	// The unique email index backs the duplicate-registration race; a
	// failure here must be visible in the logs.
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("ERROR: Failed to create trainer indexes: %v", err)
	}
}
