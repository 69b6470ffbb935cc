package repository

import (
	"context"

	"fitlink/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxRunner executes a function inside a single transactional boundary.
// Repository calls made with the context passed to fn join the transaction;
// the transaction commits iff fn returns nil.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ClientRepository defines the interface for interacting with client records.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	GetAll(ctx context.Context) ([]domain.Client, error)
	// SetCurrentTrainer sets the client's single active assignment.
	SetCurrentTrainer(ctx context.Context, clientID primitive.ObjectID, trainer domain.CurrentTrainer) error
	// AddConnection appends one entry to the client's connection history.
	AddConnection(ctx context.Context, clientID primitive.ObjectID, conn domain.TrainerConnection) error
}

// TrainerRepository defines the interface for interacting with trainer records.
type TrainerRepository interface {
	Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Trainer, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error)
	// FindMostRecentAvailable returns the newest trainer that is Approved and
	// under capacity, or ErrNotFound.
	FindMostRecentAvailable(ctx context.Context) (*domain.Trainer, error)
	// FindAvailable returns all Approved, under-capacity trainers.
	FindAvailable(ctx context.Context) ([]domain.Trainer, error)
	FindByRequestStatus(ctx context.Context, status domain.RequestStatus) ([]domain.Trainer, error)
	// FindWithResourcesAssignedTo returns trainers holding at least one
	// resource addressed to the client.
	FindWithResourcesAssignedTo(ctx context.Context, clientID primitive.ObjectID) ([]domain.Trainer, error)
	SetRequestStatus(ctx context.Context, trainerID primitive.ObjectID, status domain.RequestStatus) error
	// AddAssignedClient pushes the client onto the roster (no duplicates),
	// appends the connection record and increments the client count.
	AddAssignedClient(ctx context.Context, trainerID, clientID primitive.ObjectID, conn domain.ClientConnection) error
	AddResource(ctx context.Context, trainerID primitive.ObjectID, resource domain.Resource) error
	RemoveResource(ctx context.Context, trainerID, resourceID primitive.ObjectID) error
}

// AdminRepository defines the interface for interacting with admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Admin, error)
}

// BookRepository manages the admin-curated book catalog.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Book, error)
	GetAll(ctx context.Context) ([]domain.Book, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PodcastRepository manages the admin-curated podcast catalog.
type PodcastRepository interface {
	Create(ctx context.Context, podcast *domain.Podcast) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Podcast, error)
	GetAll(ctx context.Context) ([]domain.Podcast, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ContentRepository manages trainer-published content records.
type ContentRepository interface {
	Create(ctx context.Context, content *domain.Content) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Content, error)
	GetAll(ctx context.Context) ([]domain.Content, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Content, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// BookingRepository manages plan bookings between clients and trainers.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Booking, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Booking, error)
}
