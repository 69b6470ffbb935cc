package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/service"
	"fitlink/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerHandler holds the trainer-facing service dependencies.
type TrainerHandler struct {
	trainerService service.TrainerService
	catalogService service.CatalogService
	uploads        *storage.Gateway
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(trainerService service.TrainerService, catalogService service.CatalogService, uploads *storage.Gateway) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService, catalogService: catalogService, uploads: uploads}
}

// --- Request/Response Structs ---

type ResourceResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	AssignedTo  []string  `json:"assignedTo"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateContentRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Type        string `json:"type" binding:"required,oneof=video audio document"`
	FileURL     string `json:"fileUrl" binding:"required"`
}

type ContentResponse struct {
	ID          string    `json:"id"`
	TrainerID   string    `json:"trainerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	FileURL     string    `json:"fileUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// --- Handler Methods ---

// GetMyProfile godoc
// @Summary Get the authenticated trainer's profile
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TrainerResponse
// @Router /trainer/me [get]
func (h *TrainerHandler) GetMyProfile(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	trainer, err := h.trainerService.GetProfile(c.Request.Context(), trainerID)
	if err != nil {
		if errors.Is(err, service.ErrTrainerNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}
	c.JSON(http.StatusOK, MapTrainerToResponse(trainer))
}

// SendApprovalRequest godoc
// @Summary Ask the platform admins for approval
// @Description Moves the trainer's request status to Pending. Rejected trainers may ask again.
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TrainerResponse
// @Failure 409 {object} gin.H "Request already pending or trainer already approved"
// @Router /trainer/approval-request [post]
func (h *TrainerHandler) SendApprovalRequest(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	trainer, err := h.trainerService.SendApprovalRequest(c.Request.Context(), trainerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestAlreadyPending), errors.Is(err, service.ErrTrainerAlreadyApproved):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrTrainerNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to send approval request")
		}
		return
	}
	c.JSON(http.StatusOK, MapTrainerToResponse(trainer))
}

// AddResource godoc
// @Summary Add a coaching resource
// @Description Creates a resource on the trainer's library. Expects a multipart form; video resources may carry the file itself (max 100MB), meetings carry a link in the content field. AssignedTo must name clients on the trainer's roster.
// @Tags Trainer
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param type formData string true "Resource type (video or meeting)"
// @Param description formData string true "Description"
// @Param content formData string false "Meeting link or external video URL"
// @Param assignedTo formData []string false "Client IDs to share with"
// @Param file formData file false "Video file"
// @Success 201 {object} ResourceResponse
// @Failure 400 {object} gin.H "Invalid input or rejected file"
// @Failure 409 {object} gin.H "Assigned client is not on the roster"
// @Router /trainer/resources [post]
func (h *TrainerHandler) AddResource(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	var form struct {
		Title       string   `form:"title" binding:"required"`
		Type        string   `form:"type" binding:"required,oneof=video meeting"`
		Description string   `form:"description" binding:"required"`
		Content     string   `form:"content"`
		AssignedTo  []string `form:"assignedTo"`
	}
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	assignedTo := make([]primitive.ObjectID, 0, len(form.AssignedTo))
	for _, idStr := range form.AssignedTo {
		clientID, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid client ID in assignedTo")
			return
		}
		assignedTo = append(assignedTo, clientID)
	}

	content := form.Content
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
			return
		}
		defer file.Close()

		key, err := h.uploads.StoreAs(
			c.Request.Context(),
			storage.CategoryVideos,
			fileHeader.Filename,
			fileHeader.Header.Get("Content-Type"),
			fileHeader.Size,
			file,
		)
		if err != nil {
			var vErr *storage.ValidationError
			if errors.As(err, &vErr) {
				abortWithError(c, http.StatusBadRequest, vErr.Error())
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to store file")
			}
			return
		}
		content = key
	}

	resource, err := h.trainerService.AddResource(c.Request.Context(), trainerID, service.ResourceInput{
		Title:       form.Title,
		Type:        domain.ResourceType(form.Type),
		Content:     content,
		Description: form.Description,
		AssignedTo:  assignedTo,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResource):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrTrainerNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add resource")
		}
		return
	}
	c.JSON(http.StatusCreated, MapResourceToResponse(resource))
}

// GetMyResources godoc
// @Summary List the trainer's resources
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ResourceResponse
// @Router /trainer/resources [get]
func (h *TrainerHandler) GetMyResources(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	resources, err := h.trainerService.ListResources(c.Request.Context(), trainerID)
	if err != nil {
		if errors.Is(err, service.ErrTrainerNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load resources")
		}
		return
	}

	resp := make([]ResourceResponse, 0, len(resources))
	for i := range resources {
		resp = append(resp, MapResourceToResponse(&resources[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteResource godoc
// @Summary Delete a resource
// @Description Removes the resource and, for uploaded videos, its stored file.
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param resourceId path string true "Resource ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Resource not found"
// @Router /trainer/resources/{resourceId} [delete]
func (h *TrainerHandler) DeleteResource(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	resourceID, err := primitive.ObjectIDFromHex(c.Param("resourceId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid resource ID format")
		return
	}

	if err := h.trainerService.DeleteResource(c.Request.Context(), trainerID, resourceID); err != nil {
		switch {
		case errors.Is(err, service.ErrResourceNotFound), errors.Is(err, service.ErrTrainerNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete resource")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadResourceFile godoc
// @Summary Download an uploaded video resource's file
// @Tags Trainer
// @Produce application/octet-stream
// @Security BearerAuth
// @Param resourceId path string true "Resource ID"
// @Success 200 {file} binary
// @Failure 404 {object} gin.H "Resource or stored file not found"
// @Router /trainer/resources/{resourceId}/file [get]
func (h *TrainerHandler) DownloadResourceFile(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	resourceID, err := primitive.ObjectIDFromHex(c.Param("resourceId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid resource ID format")
		return
	}

	resource, body, err := h.trainerService.OpenResourceFile(c.Request.Context(), trainerID, resourceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResourceNotFound), errors.Is(err, service.ErrNoStoredFile), errors.Is(err, service.ErrTrainerNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to open resource file")
		}
		return
	}
	defer body.Close()

	streamAttachment(c, resource.Title, contentTypeForKey(resource.Content), body)
}

// GetClientResources godoc
// @Summary List the trainer's resources assigned to one client
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} ResourceResponse
// @Router /trainer/clients/{clientId}/resources [get]
func (h *TrainerHandler) GetClientResources(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	resources, err := h.trainerService.ListResourcesForClient(c.Request.Context(), trainerID, clientID)
	if err != nil {
		if errors.Is(err, service.ErrTrainerNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load resources")
		}
		return
	}

	resp := make([]ResourceResponse, 0, len(resources))
	for i := range resources {
		resp = append(resp, MapResourceToResponse(&resources[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetMyBookings godoc
// @Summary List bookings made with this trainer
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BookingResponse
// @Router /trainer/bookings [get]
func (h *TrainerHandler) GetMyBookings(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	bookings, err := h.trainerService.ListBookings(c.Request.Context(), trainerID)
	if err != nil {
		if errors.Is(err, service.ErrTrainerNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load bookings")
		}
		return
	}

	resp := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, MapBookingToResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetMyClients godoc
// @Summary List the trainer's assigned clients
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ClientResponse
// @Router /trainer/clients [get]
func (h *TrainerHandler) GetMyClients(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	clients, err := h.trainerService.ListAssignedClients(c.Request.Context(), trainerID)
	if err != nil {
		if errors.Is(err, service.ErrTrainerNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load clients")
		}
		return
	}

	resp := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		resp = append(resp, MapClientToResponse(&clients[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// AddContent godoc
// @Summary Publish a content entry
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param content body CreateContentRequest true "Content details"
// @Success 201 {object} ContentResponse
// @Router /trainer/content [post]
func (h *TrainerHandler) AddContent(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	var req CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	content, err := h.catalogService.AddContent(c.Request.Context(), trainerID, service.ContentInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.ContentType(req.Type),
		FileURL:     req.FileURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCatalogItem) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add content")
		}
		return
	}
	c.JSON(http.StatusCreated, MapContentToResponse(content))
}

// GetMyContent godoc
// @Summary List the trainer's published content
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ContentResponse
// @Router /trainer/content [get]
func (h *TrainerHandler) GetMyContent(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	content, err := h.catalogService.ListContentByTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load content")
		return
	}

	resp := make([]ContentResponse, 0, len(content))
	for i := range content {
		resp = append(resp, MapContentToResponse(&content[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteContent godoc
// @Summary Delete a content entry
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param contentId path string true "Content ID"
// @Success 204 "Deleted"
// @Failure 403 {object} gin.H "Content belongs to another trainer"
// @Failure 404 {object} gin.H "Content not found"
// @Router /trainer/content/{contentId} [delete]
func (h *TrainerHandler) DeleteContent(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify trainer")
		return
	}

	contentID, err := primitive.ObjectIDFromHex(c.Param("contentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid content ID format")
		return
	}

	if err := h.catalogService.DeleteContent(c.Request.Context(), trainerID, contentID); err != nil {
		switch {
		case errors.Is(err, service.ErrCatalogItemNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrContentNotOwned):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete content")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Mappers ---

// MapResourceToResponse converts a domain Resource to its DTO.
func MapResourceToResponse(resource *domain.Resource) ResourceResponse {
	if resource == nil {
		return ResourceResponse{}
	}

	assignedTo := make([]string, 0, len(resource.AssignedTo))
	for _, id := range resource.AssignedTo {
		assignedTo = append(assignedTo, id.Hex())
	}
	return ResourceResponse{
		ID:          resource.ID.Hex(),
		Title:       resource.Title,
		Type:        string(resource.Type),
		Content:     resource.Content,
		Description: resource.Description,
		AssignedTo:  assignedTo,
		CreatedAt:   resource.CreatedAt,
	}
}

// MapContentToResponse converts a domain Content to its DTO.
func MapContentToResponse(content *domain.Content) ContentResponse {
	if content == nil {
		return ContentResponse{}
	}
	return ContentResponse{
		ID:          content.ID.Hex(),
		TrainerID:   content.TrainerID.Hex(),
		Title:       content.Title,
		Description: content.Description,
		Type:        string(content.Type),
		FileURL:     content.FileURL,
		CreatedAt:   content.CreatedAt,
	}
}
