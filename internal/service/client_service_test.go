package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"fitlink/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newClientFixture(t *testing.T) (*memClientRepo, *memTrainerRepo, *memBookingRepo, ClientService) {
	t.Helper()
	clientRepo := newMemClientRepo()
	trainerRepo := newMemTrainerRepo()
	bookingRepo := &memBookingRepo{}
	svc := NewClientService(clientRepo, trainerRepo, bookingRepo, newMemFiles())
	return clientRepo, trainerRepo, bookingRepo, svc
}

func TestListMyResourcesFiltersByVisibility(t *testing.T) {
	clientRepo, trainerRepo, _, svc := newClientFixture(t)
	clientID := seedClient(t, clientRepo, "alice")
	otherID := seedClient(t, clientRepo, "carol")

	trainerID := seedTrainer(t, trainerRepo, "bob", domain.RequestApproved, 10, time.Now())
	secondID := seedTrainer(t, trainerRepo, "dan", domain.RequestApproved, 10, time.Now())

	addRes := func(trainer primitive.ObjectID, title string, assignedTo ...primitive.ObjectID) {
		require.NoError(t, trainerRepo.AddResource(context.Background(), trainer, domain.Resource{
			ID:          primitive.NewObjectID(),
			Title:       title,
			Type:        domain.ResourceMeeting,
			Content:     "https://meet.example.com/x",
			Description: "d",
			AssignedTo:  assignedTo,
			CreatedAt:   time.Now(),
		}))
	}

	addRes(trainerID, "for alice", clientID)
	addRes(trainerID, "for carol", otherID)
	addRes(trainerID, "for nobody")
	addRes(secondID, "from dan", clientID, otherID)

	resources, err := svc.ListMyResources(context.Background(), clientID)
	require.NoError(t, err)
	require.Len(t, resources, 2)

	titles := map[string]string{}
	for _, r := range resources {
		titles[r.Resource.Title] = r.TrainerName
	}
	assert.Equal(t, "bob", titles["for alice"])
	assert.Equal(t, "dan", titles["from dan"])
}

func TestListMyResourcesUnknownClient(t *testing.T) {
	_, _, _, svc := newClientFixture(t)
	_, err := svc.ListMyResources(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestGetCurrentTrainer(t *testing.T) {
	clientRepo, trainerRepo, _, svc := newClientFixture(t)
	clientID := seedClient(t, clientRepo, "alice")
	trainerID := seedTrainer(t, trainerRepo, "bob", domain.RequestApproved, 10, time.Now())

	// No assignment yet.
	_, err := svc.GetCurrentTrainer(context.Background(), clientID)
	assert.ErrorIs(t, err, ErrNoTrainerAssigned)

	require.NoError(t, clientRepo.SetCurrentTrainer(context.Background(), clientID, domain.CurrentTrainer{
		TrainerID: trainerID, TrainerName: "bob", AssignedAt: time.Now(),
	}))

	trainer, err := svc.GetCurrentTrainer(context.Background(), clientID)
	require.NoError(t, err)
	assert.Equal(t, trainerID, trainer.ID)
	assert.Empty(t, trainer.PasswordHash)
}

func TestListAvailableTrainersExcludesFullAndUnapproved(t *testing.T) {
	_, trainerRepo, _, svc := newClientFixture(t)
	approved := seedTrainer(t, trainerRepo, "bob", domain.RequestApproved, 10, time.Now())
	seedTrainer(t, trainerRepo, "pending", domain.RequestPending, 10, time.Now())
	full := seedTrainer(t, trainerRepo, "full", domain.RequestApproved, 1, time.Now())
	trainerRepo.trainers[full].CurrentClientCount = 1

	trainers, err := svc.ListAvailableTrainers(context.Background())
	require.NoError(t, err)
	require.Len(t, trainers, 1)
	assert.Equal(t, approved, trainers[0].ID)
}

func TestCreateBookingRequiresCurrentTrainer(t *testing.T) {
	clientRepo, trainerRepo, _, svc := newClientFixture(t)
	clientID := seedClient(t, clientRepo, "alice")
	trainerID := seedTrainer(t, trainerRepo, "bob", domain.RequestApproved, 10, time.Now())

	_, err := svc.CreateBooking(context.Background(), clientID, "monthly", "")
	assert.ErrorIs(t, err, ErrNoTrainerAssigned)

	require.NoError(t, clientRepo.SetCurrentTrainer(context.Background(), clientID, domain.CurrentTrainer{
		TrainerID: trainerID, TrainerName: "bob", AssignedAt: time.Now(),
	}))

	booking, err := svc.CreateBooking(context.Background(), clientID, "monthly", "https://cal.example.com/bob")
	require.NoError(t, err)
	assert.Equal(t, trainerID, booking.TrainerID)
	assert.Equal(t, domain.PaymentPending, booking.PaymentStatus)

	bookings, err := svc.ListBookings(context.Background(), clientID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestCreateBookingRequiresPlan(t *testing.T) {
	clientRepo, _, _, svc := newClientFixture(t)
	clientID := seedClient(t, clientRepo, "alice")

	_, err := svc.CreateBooking(context.Background(), clientID, "", "")
	assert.ErrorIs(t, err, ErrInvalidBooking)
}

func TestClientOpenResourceFile(t *testing.T) {
	clientRepo := newMemClientRepo()
	trainerRepo := newMemTrainerRepo()
	files := newMemFiles()
	svc := NewClientService(clientRepo, trainerRepo, &memBookingRepo{}, files)

	clientID := seedClient(t, clientRepo, "alice")
	strangerID := seedClient(t, clientRepo, "carol")
	trainerID := seedTrainer(t, trainerRepo, "bob", domain.RequestApproved, 10, time.Now())

	require.NoError(t, files.Save(context.Background(), "videos/drill.mp4", "video/mp4", strings.NewReader("reps")))
	resourceID := primitive.NewObjectID()
	require.NoError(t, trainerRepo.AddResource(context.Background(), trainerID, domain.Resource{
		ID:          resourceID,
		Title:       "Drill",
		Type:        domain.ResourceVideo,
		Content:     "videos/drill.mp4",
		Description: "d",
		AssignedTo:  []primitive.ObjectID{clientID},
		CreatedAt:   time.Now(),
	}))

	resource, body, err := svc.OpenResourceFile(context.Background(), clientID, resourceID)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "reps", string(data))
	assert.Equal(t, "Drill", resource.Title)

	// A client the resource is not addressed to cannot tell it exists.
	_, _, err = svc.OpenResourceFile(context.Background(), strangerID, resourceID)
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, _, err = svc.OpenResourceFile(context.Background(), clientID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrResourceNotFound)
}
