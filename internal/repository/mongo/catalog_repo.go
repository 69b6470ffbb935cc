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

const (
	bookCollectionName    = "books"
	podcastCollectionName = "podcasts"
	contentCollectionName = "contents"
)

// --- Books ---

type mongoBookRepository struct {
	collection *mongo.Collection
}

// NewMongoBookRepository creates a new Book repository backed by MongoDB.
func NewMongoBookRepository(db *mongo.Database) repository.BookRepository {
	return &mongoBookRepository{collection: db.Collection(bookCollectionName)}
}

func (r *mongoBookRepository) Create(ctx context.Context, book *domain.Book) (primitive.ObjectID, error) {
	if book.Title == "" || book.FileKey == "" {
		return primitive.NilObjectID, errors.New("book title and file key are required")
	}

	book.ID = primitive.NewObjectID()
	book.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, book)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoBookRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Book, error) {
	var book domain.Book
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *mongoBookRepository) GetAll(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *mongoBookRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// --- Podcasts ---

type mongoPodcastRepository struct {
	collection *mongo.Collection
}

// NewMongoPodcastRepository creates a new Podcast repository backed by MongoDB.
func NewMongoPodcastRepository(db *mongo.Database) repository.PodcastRepository {
	return &mongoPodcastRepository{collection: db.Collection(podcastCollectionName)}
}

func (r *mongoPodcastRepository) Create(ctx context.Context, podcast *domain.Podcast) (primitive.ObjectID, error) {
	if podcast.Title == "" || podcast.FileKey == "" {
		return primitive.NilObjectID, errors.New("podcast title and file key are required")
	}

	podcast.ID = primitive.NewObjectID()
	podcast.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, podcast)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoPodcastRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Podcast, error) {
	var podcast domain.Podcast
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&podcast)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &podcast, nil
}

func (r *mongoPodcastRepository) GetAll(ctx context.Context) ([]domain.Podcast, error) {
	var podcasts []domain.Podcast
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &podcasts); err != nil {
		return nil, err
	}
	return podcasts, nil
}

func (r *mongoPodcastRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// --- Content ---

type mongoContentRepository struct {
	collection *mongo.Collection
}

// NewMongoContentRepository creates a new Content repository backed by MongoDB.
func NewMongoContentRepository(db *mongo.Database) repository.ContentRepository {
	return &mongoContentRepository{collection: db.Collection(contentCollectionName)}
}

func (r *mongoContentRepository) Create(ctx context.Context, content *domain.Content) (primitive.ObjectID, error) {
	if content.Title == "" || content.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("content title and trainer ID are required")
	}

	content.ID = primitive.NewObjectID()
	content.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, content)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoContentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Content, error) {
	var content domain.Content
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&content)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &content, nil
}

func (r *mongoContentRepository) GetAll(ctx context.Context) ([]domain.Content, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoContentRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Content, error) {
	return r.find(ctx, bson.M{"trainerId": trainerID})
}

func (r *mongoContentRepository) find(ctx context.Context, filter bson.M) ([]domain.Content, error) {
	var contents []domain.Content
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &contents); err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *mongoContentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureCatalogIndexes creates indexes for the catalog collections.
func EnsureCatalogIndexes(ctx context.Context, db *mongo.Database) {
	contentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := db.Collection(contentCollectionName).Indexes().CreateMany(ctx, contentIndexes); err != nil {
		log.Printf("ERROR: Failed to create content indexes: %v", err)
	}
}
