package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientHandler holds the client-facing service dependencies.
type ClientHandler struct {
	clientService     service.ClientService
	assignmentService service.AssignmentService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService, assignmentService service.AssignmentService) *ClientHandler {
	return &ClientHandler{clientService: clientService, assignmentService: assignmentService}
}

// --- Request/Response Structs ---

type AssignmentResponse struct {
	Client  ClientResponse  `json:"client"`
	Trainer TrainerResponse `json:"trainer"`
}

type ClientResourceResponse struct {
	Resource    ResourceResponse `json:"resource"`
	TrainerID   string           `json:"trainerId"`
	TrainerName string           `json:"trainerName"`
}

type CreateBookingRequest struct {
	Plan         string `json:"plan" binding:"required"`
	ScheduleLink string `json:"scheduleLink"`
}

type BookingResponse struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"clientId"`
	TrainerID     string    `json:"trainerId"`
	Plan          string    `json:"plan"`
	PaymentStatus string    `json:"paymentStatus"`
	ScheduleLink  string    `json:"scheduleLink,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// --- Handler Methods ---

// GetMyProfile godoc
// @Summary Get the authenticated client's profile
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ClientResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /client/me [get]
func (h *ClientHandler) GetMyProfile(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
		return
	}

	client, err := h.clientService.GetProfile(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}
	c.JSON(http.StatusOK, MapClientToResponse(client))
}

// GetAvailableTrainers godoc
// @Summary List approved trainers with free capacity
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TrainerResponse
// @Router /client/trainers [get]
func (h *ClientHandler) GetAvailableTrainers(c *gin.Context) {
	trainers, err := h.clientService.ListAvailableTrainers(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list trainers")
		return
	}

	resp := make([]TrainerResponse, 0, len(trainers))
	for i := range trainers {
		resp = append(resp, MapTrainerToResponse(&trainers[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// AssignTrainer godoc
// @Summary Auto-assign the most recently registered available trainer
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AssignmentResponse
// @Failure 404 {object} gin.H "No trainer available"
// @Failure 409 {object} gin.H "Client already has a trainer"
// @Router /client/trainer/assign [post]
func (h *ClientHandler) AssignTrainer(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
		return
	}

	client, trainer, err := h.assignmentService.Assign(c.Request.Context(), clientID)
	if err != nil {
		h.abortAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, AssignmentResponse{
		Client:  MapClientToResponse(client),
		Trainer: MapTrainerToResponse(trainer),
	})
}

// ConnectTrainer godoc
// @Summary Connect to a specific trainer
// @Description Pairs the client with the given trainer. Reconnecting to the current trainer is a no-op.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {object} AssignmentResponse
// @Failure 404 {object} gin.H "Trainer not found"
// @Failure 409 {object} gin.H "Client already assigned or trainer unavailable"
// @Router /client/trainers/{trainerId}/connect [post]
func (h *ClientHandler) ConnectTrainer(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
		return
	}

	trainerID, err := primitive.ObjectIDFromHex(c.Param("trainerId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format")
		return
	}

	client, trainer, err := h.assignmentService.Connect(c.Request.Context(), clientID, trainerID)
	if err != nil {
		h.abortAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, AssignmentResponse{
		Client:  MapClientToResponse(client),
		Trainer: MapTrainerToResponse(trainer),
	})
}

func (h *ClientHandler) abortAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound), errors.Is(err, service.ErrTrainerNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoTrainerAvailable):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientAlreadyAssigned),
		errors.Is(err, service.ErrTrainerAtCapacity),
		errors.Is(err, service.ErrTrainerNotApproved):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to assign trainer")
	}
}

// GetCurrentTrainer godoc
// @Summary Get the client's current trainer
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TrainerResponse
// @Failure 404 {object} gin.H "No current trainer"
// @Router /client/trainer [get]
func (h *ClientHandler) GetCurrentTrainer(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
		return
	}

	trainer, err := h.clientService.GetCurrentTrainer(c.Request.Context(), clientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoTrainerAssigned), errors.Is(err, service.ErrTrainerNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load trainer")
		}
		return
	}
	c.JSON(http.StatusOK, MapTrainerToResponse(trainer))
}

// GetMyResources godoc
// @Summary List resources shared with the client
// @Description Returns every resource any trainer has assigned to the authenticated client.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ClientResourceResponse
// @Router /client/resources [get]
func (h *ClientHandler) GetMyResources(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
		return
	}

	resources, err := h.clientService.ListMyResources(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load resources")
		}
		return
	}

	resp := make([]ClientResourceResponse, 0, len(resources))
	for _, r := range resources {
		resp = append(resp, ClientResourceResponse{
			Resource:    MapResourceToResponse(&r.Resource),
			TrainerID:   r.TrainerID.Hex(),
			TrainerName: r.TrainerName,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadResourceFile godoc
// @Summary Download the stored file of a resource shared with the client
// @Tags Client
// @Produce application/octet-stream
// @Security BearerAuth
// @Param resourceId path string true "Resource ID"
// @Success 200 {file} binary
// @Failure 404 {object} gin.H "Resource or stored file not found"
// @Router /client/resources/{resourceId}/file [get]
func (h *ClientHandler) DownloadResourceFile(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
		return
	}

	resourceID, err := primitive.ObjectIDFromHex(c.Param("resourceId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid resource ID format")
		return
	}

	resource, body, err := h.clientService.OpenResourceFile(c.Request.Context(), clientID, resourceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResourceNotFound), errors.Is(err, service.ErrNoStoredFile), errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to open resource file")
		}
		return
	}
	defer body.Close()

	streamAttachment(c, resource.Title, contentTypeForKey(resource.Content), body)
}

// CreateBooking godoc
// @Summary Book a session with the current trainer
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param booking body CreateBookingRequest true "Booking details"
// @Success 201 {object} BookingResponse
// @Failure 409 {object} gin.H "No current trainer to book with"
// @Router /client/bookings [post]
func (h *ClientHandler) CreateBooking(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	booking, err := h.clientService.CreateBooking(c.Request.Context(), clientID, req.Plan, req.ScheduleLink)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBooking):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoTrainerAssigned):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create booking")
		}
		return
	}
	c.JSON(http.StatusCreated, MapBookingToResponse(booking))
}

// GetMyBookings godoc
// @Summary List the client's bookings
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BookingResponse
// @Router /client/bookings [get]
func (h *ClientHandler) GetMyBookings(c *gin.Context) {
	clientID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
		return
	}

	bookings, err := h.clientService.ListBookings(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load bookings")
		return
	}

	resp := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, MapBookingToResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// MapBookingToResponse converts a domain Booking to its DTO.
func MapBookingToResponse(booking *domain.Booking) BookingResponse {
	if booking == nil {
		return BookingResponse{}
	}
	return BookingResponse{
		ID:            booking.ID.Hex(),
		ClientID:      booking.ClientID.Hex(),
		TrainerID:     booking.TrainerID.Hex(),
		Plan:          booking.Plan,
		PaymentStatus: string(booking.PaymentStatus),
		ScheduleLink:  booking.ScheduleLink,
		CreatedAt:     booking.CreatedAt,
	}
}
