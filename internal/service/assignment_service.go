package service

import (
	"context"
	"errors"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrClientNotFound        = errors.New("client not found")
	ErrTrainerNotFound       = errors.New("trainer not found")
	ErrNoTrainerAvailable    = errors.New("no approved trainer with free capacity is available")
	ErrClientAlreadyAssigned = errors.New("client already has a current trainer")
	ErrTrainerNotApproved    = errors.New("trainer has not been approved")
	ErrTrainerAtCapacity     = errors.New("trainer has reached maximum client capacity")
)

// AssignmentService pairs clients with trainers. Both sides of a pairing are
// written inside a single transaction so the trainer's roster and the
// client's current trainer never diverge.
type AssignmentService interface {
	// Assign picks the most recently registered approved trainer with free
	// capacity and pairs the client with them.
	Assign(ctx context.Context, clientID primitive.ObjectID) (*domain.Client, *domain.Trainer, error)

	// Connect pairs the client with the specific trainer. Connecting to the
	// trainer the client already has succeeds without writing anything.
	Connect(ctx context.Context, clientID, trainerID primitive.ObjectID) (*domain.Client, *domain.Trainer, error)
}

type assignmentService struct {
	clientRepo  repository.ClientRepository
	trainerRepo repository.TrainerRepository
	tx          repository.TxRunner
}

// NewAssignmentService creates a new instance of assignmentService.
func NewAssignmentService(
	clientRepo repository.ClientRepository,
	trainerRepo repository.TrainerRepository,
	tx repository.TxRunner,
) AssignmentService {
	return &assignmentService{clientRepo: clientRepo, trainerRepo: trainerRepo, tx: tx}
}

func (s *assignmentService) Assign(ctx context.Context, clientID primitive.ObjectID) (*domain.Client, *domain.Trainer, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrClientNotFound
		}
		return nil, nil, err
	}
	if client.HasTrainer() {
		return nil, nil, ErrClientAlreadyAssigned
	}

	trainer, err := s.trainerRepo.FindMostRecentAvailable(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNoTrainerAvailable
		}
		return nil, nil, err
	}

	if err := s.pair(ctx, client, trainer); err != nil {
		return nil, nil, err
	}
	return client, trainer, nil
}

func (s *assignmentService) Connect(ctx context.Context, clientID, trainerID primitive.ObjectID) (*domain.Client, *domain.Trainer, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrClientNotFound
		}
		return nil, nil, err
	}

	trainer, err := s.trainerRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrTrainerNotFound
		}
		return nil, nil, err
	}

	// Reconnecting to the current trainer is a no-op confirmation.
	if client.IsAssignedTo(trainerID) {
		return client, trainer, nil
	}
	if client.HasTrainer() {
		return nil, nil, ErrClientAlreadyAssigned
	}

	if !trainer.IsApproved() {
		return nil, nil, ErrTrainerNotApproved
	}
	if !trainer.IsAvailable() {
		return nil, nil, ErrTrainerAtCapacity
	}

	if err := s.pair(ctx, client, trainer); err != nil {
		return nil, nil, err
	}
	return client, trainer, nil
}

// pair writes both documents of the pairing transactionally. The trainer
// update carries its own capacity guard, so a concurrent pairing that fills
// the last slot aborts this one instead of overshooting the capacity.
func (s *assignmentService) pair(ctx context.Context, client *domain.Client, trainer *domain.Trainer) error {
	now := time.Now()
	current := &domain.CurrentTrainer{
		TrainerID:   trainer.ID,
		TrainerName: trainer.Name,
		AssignedAt:  now,
	}
	trainerSide := domain.ClientConnection{
		ClientID:    client.ID,
		Status:      domain.ConnectionConnected,
		ConnectedAt: now,
	}
	clientSide := domain.TrainerConnection{
		TrainerID:   trainer.ID,
		Status:      domain.ConnectionConnected,
		ConnectedAt: now,
	}

	err := s.tx.WithTransaction(ctx, func(sc context.Context) error {
		if err := s.trainerRepo.AddAssignedClient(sc, trainer.ID, client.ID, trainerSide); err != nil {
			return err
		}
		if err := s.clientRepo.SetCurrentTrainer(sc, client.ID, *current); err != nil {
			return err
		}
		return s.clientRepo.AddConnection(sc, client.ID, clientSide)
	})
	if err != nil {
		// The guarded update matched nothing: the trainer filled up or the
		// client was already on the roster.
		if errors.Is(err, repository.ErrUpdateFailed) {
			return ErrTrainerAtCapacity
		}
		return err
	}

	client.CurrentTrainer = current
	client.ConnectedTrainers = append(client.ConnectedTrainers, clientSide)
	trainer.AssignedClients = append(trainer.AssignedClients, client.ID)
	trainer.Connections = append(trainer.Connections, trainerSide)
	trainer.CurrentClientCount++
	return nil
}
