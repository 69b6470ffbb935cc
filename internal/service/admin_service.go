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
	ErrRequestNotPending   = errors.New("trainer has no pending approval request")
	ErrCertificateNotFound = errors.New("trainer has no stored certificate")
)

// AdminService covers the moderation surface: the trainer approval queue and
// platform-wide listings.
type AdminService interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	ListTrainerRequests(ctx context.Context) ([]domain.Trainer, error)
	ApproveTrainerRequest(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, error)
	RejectTrainerRequest(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, error)
	// OpenTrainerCertificate streams the certificate uploaded at signup so
	// an admin can review it. The caller closes the reader.
	OpenTrainerCertificate(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, io.ReadCloser, error)
}

type adminService struct {
	clientRepo  repository.ClientRepository
	trainerRepo repository.TrainerRepository
	files       storage.FileStorage
}

// NewAdminService creates a new instance of adminService.
func NewAdminService(clientRepo repository.ClientRepository, trainerRepo repository.TrainerRepository, files storage.FileStorage) AdminService {
	return &adminService{clientRepo: clientRepo, trainerRepo: trainerRepo, files: files}
}

func (s *adminService) ListClients(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.clientRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

func (s *adminService) ListTrainerRequests(ctx context.Context) ([]domain.Trainer, error) {
	trainers, err := s.trainerRepo.FindByRequestStatus(ctx, domain.RequestPending)
	if err != nil {
		return nil, err
	}
	for i := range trainers {
		trainers[i].PasswordHash = ""
	}
	return trainers, nil
}

func (s *adminService) ApproveTrainerRequest(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, error) {
	return s.resolveRequest(ctx, trainerID, domain.RequestApproved)
}

func (s *adminService) RejectTrainerRequest(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, error) {
	return s.resolveRequest(ctx, trainerID, domain.RequestRejected)
}

func (s *adminService) OpenTrainerCertificate(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, io.ReadCloser, error) {
	trainer, err := s.trainerRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrTrainerNotFound
		}
		return nil, nil, err
	}
	if trainer.Certificate == "" {
		return nil, nil, ErrCertificateNotFound
	}

	body, err := s.files.Open(ctx, trainer.Certificate)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrCertificateNotFound
		}
		return nil, nil, err
	}
	trainer.PasswordHash = ""
	return trainer, body, nil
}

// resolveRequest settles a pending request one way or the other. Only
// pending requests can be settled.
func (s *adminService) resolveRequest(ctx context.Context, trainerID primitive.ObjectID, status domain.RequestStatus) (*domain.Trainer, error) {
	trainer, err := s.trainerRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	if trainer.RequestStatus != domain.RequestPending {
		return nil, ErrRequestNotPending
	}

	if err := s.trainerRepo.SetRequestStatus(ctx, trainerID, status); err != nil {
		return nil, err
	}
	trainer.RequestStatus = status
	trainer.PasswordHash = ""
	return trainer, nil
}
