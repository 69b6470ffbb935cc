package service

import (
	"context"
	"errors"
	"io"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/repository"
	"fitlink/coaching-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoTrainerAssigned = errors.New("client has no current trainer")
	ErrInvalidBooking    = errors.New("booking is missing required fields")
)

// ClientResource is a resource visible to a client, annotated with the
// trainer that shared it.
type ClientResource struct {
	Resource    domain.Resource
	TrainerID   primitive.ObjectID
	TrainerName string
}

// ClientService covers the client-facing read operations plus bookings.
type ClientService interface {
	GetProfile(ctx context.Context, clientID primitive.ObjectID) (*domain.Client, error)
	GetCurrentTrainer(ctx context.Context, clientID primitive.ObjectID) (*domain.Trainer, error)
	ListAvailableTrainers(ctx context.Context) ([]domain.Trainer, error)

	// ListMyResources gathers every resource any trainer has assigned to
	// the client.
	ListMyResources(ctx context.Context, clientID primitive.ObjectID) ([]ClientResource, error)
	// OpenResourceFile streams the stored file of a resource assigned to
	// the client. The caller closes the reader.
	OpenResourceFile(ctx context.Context, clientID, resourceID primitive.ObjectID) (*domain.Resource, io.ReadCloser, error)

	CreateBooking(ctx context.Context, clientID primitive.ObjectID, plan, scheduleLink string) (*domain.Booking, error)
	ListBookings(ctx context.Context, clientID primitive.ObjectID) ([]domain.Booking, error)
}

type clientService struct {
	clientRepo  repository.ClientRepository
	trainerRepo repository.TrainerRepository
	bookingRepo repository.BookingRepository
	files       storage.FileStorage
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	clientRepo repository.ClientRepository,
	trainerRepo repository.TrainerRepository,
	bookingRepo repository.BookingRepository,
	files storage.FileStorage,
) ClientService {
	return &clientService{clientRepo: clientRepo, trainerRepo: trainerRepo, bookingRepo: bookingRepo, files: files}
}

func (s *clientService) GetProfile(ctx context.Context, clientID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	client.PasswordHash = ""
	return client, nil
}

func (s *clientService) GetCurrentTrainer(ctx context.Context, clientID primitive.ObjectID) (*domain.Trainer, error) {
	client, err := s.GetProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.HasTrainer() {
		return nil, ErrNoTrainerAssigned
	}

	trainer, err := s.trainerRepo.GetByID(ctx, client.CurrentTrainer.TrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	trainer.PasswordHash = ""
	return trainer, nil
}

func (s *clientService) ListAvailableTrainers(ctx context.Context) ([]domain.Trainer, error) {
	trainers, err := s.trainerRepo.FindAvailable(ctx)
	if err != nil {
		return nil, err
	}
	for i := range trainers {
		trainers[i].PasswordHash = ""
	}
	return trainers, nil
}

func (s *clientService) ListMyResources(ctx context.Context, clientID primitive.ObjectID) ([]ClientResource, error) {
	// Existence check keeps a stale token from producing an empty 200.
	if _, err := s.GetProfile(ctx, clientID); err != nil {
		return nil, err
	}

	trainers, err := s.trainerRepo.FindWithResourcesAssignedTo(ctx, clientID)
	if err != nil {
		return nil, err
	}

	resources := []ClientResource{}
	for i := range trainers {
		for _, r := range trainers[i].Resources {
			if r.IsAssignedTo(clientID) {
				resources = append(resources, ClientResource{
					Resource:    r,
					TrainerID:   trainers[i].ID,
					TrainerName: trainers[i].Name,
				})
			}
		}
	}
	return resources, nil
}

// OpenResourceFile locates a resource assigned to the client and opens its
// stored file. A resource not addressed to the client is indistinguishable
// from a missing one.
func (s *clientService) OpenResourceFile(ctx context.Context, clientID, resourceID primitive.ObjectID) (*domain.Resource, io.ReadCloser, error) {
	if _, err := s.GetProfile(ctx, clientID); err != nil {
		return nil, nil, err
	}

	trainers, err := s.trainerRepo.FindWithResourcesAssignedTo(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}

	for i := range trainers {
		for j := range trainers[i].Resources {
			r := &trainers[i].Resources[j]
			if r.ID != resourceID || !r.IsAssignedTo(clientID) {
				continue
			}
			if !hasStoredFile(r) {
				return nil, nil, ErrNoStoredFile
			}
			body, err := s.files.Open(ctx, r.Content)
			if err != nil {
				if errors.Is(err, storage.ErrObjectNotFound) {
					return nil, nil, ErrNoStoredFile
				}
				return nil, nil, err
			}
			return r, body, nil
		}
	}
	return nil, nil, ErrResourceNotFound
}

// CreateBooking records a session booking with the client's current trainer.
func (s *clientService) CreateBooking(ctx context.Context, clientID primitive.ObjectID, plan, scheduleLink string) (*domain.Booking, error) {
	if plan == "" {
		return nil, ErrInvalidBooking
	}

	client, err := s.GetProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.HasTrainer() {
		return nil, ErrNoTrainerAssigned
	}

	booking := &domain.Booking{
		ClientID:      clientID,
		TrainerID:     client.CurrentTrainer.TrainerID,
		Plan:          plan,
		PaymentStatus: domain.PaymentPending,
		ScheduleLink:  scheduleLink,
	}

	bookingID, err := s.bookingRepo.Create(ctx, booking)
	if err != nil {
		return nil, err
	}
	booking.ID = bookingID
	return booking, nil
}

func (s *clientService) ListBookings(ctx context.Context, clientID primitive.ObjectID) ([]domain.Booking, error) {
	return s.bookingRepo.GetByClientID(ctx, clientID)
}
