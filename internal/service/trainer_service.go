package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/repository"
	"fitlink/coaching-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrResourceNotFound       = errors.New("resource not found")
	ErrNoStoredFile           = errors.New("resource has no stored file")
	ErrInvalidResource        = errors.New("resource is missing required fields")
	ErrClientNotManaged       = errors.New("resource assigned to a client outside the trainer's roster")
	ErrRequestAlreadyPending  = errors.New("an approval request is already pending")
	ErrTrainerAlreadyApproved = errors.New("trainer is already approved")
)

// ResourceInput carries the fields of a new coaching resource. For video
// resources Content is the stored object key; for meetings it is the
// meeting link.
type ResourceInput struct {
	Title       string
	Type        domain.ResourceType
	Content     string
	Description string
	AssignedTo  []primitive.ObjectID
}

// TrainerService covers the trainer-facing operations: the approval request
// workflow, the resource library, and the assigned client roster.
type TrainerService interface {
	GetProfile(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, error)

	SendApprovalRequest(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, error)

	AddResource(ctx context.Context, trainerID primitive.ObjectID, input ResourceInput) (*domain.Resource, error)
	ListResources(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Resource, error)
	ListResourcesForClient(ctx context.Context, trainerID, clientID primitive.ObjectID) ([]domain.Resource, error)
	// OpenResourceFile streams a stored video resource's file. The caller
	// closes the reader.
	OpenResourceFile(ctx context.Context, trainerID, resourceID primitive.ObjectID) (*domain.Resource, io.ReadCloser, error)
	DeleteResource(ctx context.Context, trainerID, resourceID primitive.ObjectID) error

	ListAssignedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Client, error)
	ListBookings(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Booking, error)
}

type trainerService struct {
	trainerRepo repository.TrainerRepository
	clientRepo  repository.ClientRepository
	bookingRepo repository.BookingRepository
	files       storage.FileStorage
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(
	trainerRepo repository.TrainerRepository,
	clientRepo repository.ClientRepository,
	bookingRepo repository.BookingRepository,
	files storage.FileStorage,
) TrainerService {
	return &trainerService{trainerRepo: trainerRepo, clientRepo: clientRepo, bookingRepo: bookingRepo, files: files}
}

func (s *trainerService) GetProfile(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, error) {
	trainer, err := s.trainerRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	trainer.PasswordHash = ""
	return trainer, nil
}

// SendApprovalRequest moves the trainer into the Pending state. A rejected
// trainer may ask again; a pending or approved one may not.
func (s *trainerService) SendApprovalRequest(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, error) {
	trainer, err := s.GetProfile(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	switch trainer.RequestStatus {
	case domain.RequestPending:
		return nil, ErrRequestAlreadyPending
	case domain.RequestApproved:
		return nil, ErrTrainerAlreadyApproved
	}

	if err := s.trainerRepo.SetRequestStatus(ctx, trainerID, domain.RequestPending); err != nil {
		return nil, err
	}
	trainer.RequestStatus = domain.RequestPending
	return trainer, nil
}

// AddResource validates and stores a new resource on the trainer document.
// Every client in AssignedTo must be on the trainer's roster.
func (s *trainerService) AddResource(ctx context.Context, trainerID primitive.ObjectID, input ResourceInput) (*domain.Resource, error) {
	if input.Title == "" || input.Content == "" || input.Description == "" {
		return nil, ErrInvalidResource
	}
	if input.Type != domain.ResourceVideo && input.Type != domain.ResourceMeeting {
		return nil, ErrInvalidResource
	}

	trainer, err := s.GetProfile(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	for _, clientID := range input.AssignedTo {
		if !trainer.HasAssignedClient(clientID) {
			return nil, ErrClientNotManaged
		}
	}

	resource := domain.Resource{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Type:        input.Type,
		Content:     input.Content,
		Description: input.Description,
		AssignedTo:  input.AssignedTo,
		CreatedAt:   time.Now(),
	}
	if resource.AssignedTo == nil {
		resource.AssignedTo = []primitive.ObjectID{}
	}

	if err := s.trainerRepo.AddResource(ctx, trainerID, resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (s *trainerService) ListResources(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Resource, error) {
	trainer, err := s.GetProfile(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if trainer.Resources == nil {
		return []domain.Resource{}, nil
	}
	return trainer.Resources, nil
}

// ListResourcesForClient returns the subset of the trainer's resources
// addressed to the given client.
func (s *trainerService) ListResourcesForClient(ctx context.Context, trainerID, clientID primitive.ObjectID) ([]domain.Resource, error) {
	resources, err := s.ListResources(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Resource, 0, len(resources))
	for _, r := range resources {
		if r.IsAssignedTo(clientID) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

// hasStoredFile reports whether the resource's content is a key in file
// storage rather than an external link.
func hasStoredFile(r *domain.Resource) bool {
	return r.Type == domain.ResourceVideo && strings.HasPrefix(r.Content, string(storage.CategoryVideos)+"/")
}

// OpenResourceFile opens the stored file behind an uploaded video resource.
// Meeting resources and externally hosted videos have no stored file.
func (s *trainerService) OpenResourceFile(ctx context.Context, trainerID, resourceID primitive.ObjectID) (*domain.Resource, io.ReadCloser, error) {
	trainer, err := s.GetProfile(ctx, trainerID)
	if err != nil {
		return nil, nil, err
	}
	resource := trainer.ResourceByID(resourceID)
	if resource == nil {
		return nil, nil, ErrResourceNotFound
	}
	if !hasStoredFile(resource) {
		return nil, nil, ErrNoStoredFile
	}

	body, err := s.files.Open(ctx, resource.Content)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrNoStoredFile
		}
		return nil, nil, err
	}
	return resource, body, nil
}

// DeleteResource removes a resource and, for uploaded videos, its stored
// file. A missing file does not fail the delete.
func (s *trainerService) DeleteResource(ctx context.Context, trainerID, resourceID primitive.ObjectID) error {
	trainer, err := s.GetProfile(ctx, trainerID)
	if err != nil {
		return err
	}
	resource := trainer.ResourceByID(resourceID)
	if resource == nil {
		return ErrResourceNotFound
	}

	if err := s.trainerRepo.RemoveResource(ctx, trainerID, resourceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResourceNotFound
		}
		return err
	}

	if hasStoredFile(resource) {
		if err := s.files.Delete(ctx, resource.Content); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			// The record is already gone; losing the blob cleanup is not
			// worth failing the request over.
			log.Printf("WARN: failed to delete resource file %s: %v", resource.Content, err)
		}
	}
	return nil
}

func (s *trainerService) ListAssignedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Client, error) {
	trainer, err := s.GetProfile(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Client, 0, len(trainer.AssignedClients))
	for _, clientID := range trainer.AssignedClients {
		client, err := s.clientRepo.GetByID(ctx, clientID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // Deleted account; skip rather than fail the roster.
			}
			return nil, err
		}
		client.PasswordHash = ""
		clients = append(clients, *client)
	}
	return clients, nil
}

func (s *trainerService) ListBookings(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Booking, error) {
	if _, err := s.GetProfile(ctx, trainerID); err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.GetByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}
