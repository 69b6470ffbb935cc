package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/service"
	"fitlink/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler holds the moderation and catalog-curation dependencies.
type AdminHandler struct {
	adminService   service.AdminService
	catalogService service.CatalogService
	uploads        *storage.Gateway
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService service.AdminService, catalogService service.CatalogService, uploads *storage.Gateway) *AdminHandler {
	return &AdminHandler{adminService: adminService, catalogService: catalogService, uploads: uploads}
}

// --- Handler Methods ---

// GetClients godoc
// @Summary List all registered clients
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ClientResponse
// @Router /admin/clients [get]
func (h *AdminHandler) GetClients(c *gin.Context) {
	clients, err := h.adminService.ListClients(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	resp := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		resp = append(resp, MapClientToResponse(&clients[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetTrainerRequests godoc
// @Summary List pending trainer approval requests
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TrainerResponse
// @Router /admin/trainer-requests [get]
func (h *AdminHandler) GetTrainerRequests(c *gin.Context) {
	trainers, err := h.adminService.ListTrainerRequests(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list trainer requests")
		return
	}

	resp := make([]TrainerResponse, 0, len(trainers))
	for i := range trainers {
		resp = append(resp, MapTrainerToResponse(&trainers[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// ApproveTrainer godoc
// @Summary Approve a pending trainer request
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {object} TrainerResponse
// @Failure 404 {object} gin.H "Trainer not found"
// @Failure 409 {object} gin.H "No pending request"
// @Router /admin/trainer-requests/{trainerId}/approve [post]
func (h *AdminHandler) ApproveTrainer(c *gin.Context) {
	h.resolveTrainerRequest(c, h.adminService.ApproveTrainerRequest)
}

// RejectTrainer godoc
// @Summary Reject a pending trainer request
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {object} TrainerResponse
// @Failure 404 {object} gin.H "Trainer not found"
// @Failure 409 {object} gin.H "No pending request"
// @Router /admin/trainer-requests/{trainerId}/reject [post]
func (h *AdminHandler) RejectTrainer(c *gin.Context) {
	h.resolveTrainerRequest(c, h.adminService.RejectTrainerRequest)
}

func (h *AdminHandler) resolveTrainerRequest(
	c *gin.Context,
	resolve func(ctx context.Context, trainerID primitive.ObjectID) (*domain.Trainer, error),
) {
	trainerID, err := primitive.ObjectIDFromHex(c.Param("trainerId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format")
		return
	}

	trainer, err := resolve(c.Request.Context(), trainerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrainerNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrRequestNotPending):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to resolve trainer request")
		}
		return
	}
	c.JSON(http.StatusOK, MapTrainerToResponse(trainer))
}

// DownloadTrainerCertificate godoc
// @Summary Download the certificate a trainer uploaded at signup
// @Tags Admin
// @Produce application/octet-stream
// @Security BearerAuth
// @Param trainerId path string true "Trainer ID"
// @Success 200 {file} binary
// @Failure 404 {object} gin.H "Trainer or certificate not found"
// @Router /admin/trainer-requests/{trainerId}/certificate [get]
func (h *AdminHandler) DownloadTrainerCertificate(c *gin.Context) {
	trainerID, err := primitive.ObjectIDFromHex(c.Param("trainerId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format")
		return
	}

	trainer, body, err := h.adminService.OpenTrainerCertificate(c.Request.Context(), trainerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrainerNotFound), errors.Is(err, service.ErrCertificateNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to open certificate")
		}
		return
	}
	defer body.Close()

	streamAttachment(c, trainer.Name+" certificate", contentTypeForKey(trainer.Certificate), body)
}

// AddBook godoc
// @Summary Upload a book to the shared library
// @Description Expects a multipart form with a PDF file (max 50MB).
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param intro formData string true "Introduction"
// @Param file formData file true "PDF file"
// @Success 201 {object} BookResponse
// @Failure 400 {object} gin.H "Invalid input or rejected file"
// @Router /admin/books [post]
func (h *AdminHandler) AddBook(c *gin.Context) {
	var form struct {
		Title string `form:"title" binding:"required"`
		Intro string `form:"intro" binding:"required"`
	}
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	fileKey, ok := h.storeCatalogFile(c, storage.CategoryBooks)
	if !ok {
		return
	}

	book, err := h.catalogService.AddBook(c.Request.Context(), form.Title, form.Intro, fileKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCatalogItem) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add book")
		}
		return
	}
	c.JSON(http.StatusCreated, MapBookToResponse(book))
}

// DeleteBook godoc
// @Summary Delete a book and its stored file
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param bookId path string true "Book ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Book not found"
// @Router /admin/books/{bookId} [delete]
func (h *AdminHandler) DeleteBook(c *gin.Context) {
	bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid book ID format")
		return
	}

	if err := h.catalogService.DeleteBook(c.Request.Context(), bookID); err != nil {
		if errors.Is(err, service.ErrCatalogItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete book")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPodcast godoc
// @Summary Upload a podcast episode to the shared library
// @Description Expects a multipart form with an audio file (max 50MB).
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param file formData file true "Audio file"
// @Success 201 {object} PodcastResponse
// @Failure 400 {object} gin.H "Invalid input or rejected file"
// @Router /admin/podcasts [post]
func (h *AdminHandler) AddPodcast(c *gin.Context) {
	var form struct {
		Title       string `form:"title" binding:"required"`
		Description string `form:"description" binding:"required"`
	}
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	fileKey, ok := h.storeCatalogFile(c, storage.CategoryPodcasts)
	if !ok {
		return
	}

	podcast, err := h.catalogService.AddPodcast(c.Request.Context(), form.Title, form.Description, fileKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCatalogItem) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add podcast")
		}
		return
	}
	c.JSON(http.StatusCreated, MapPodcastToResponse(podcast))
}

// DeletePodcast godoc
// @Summary Delete a podcast and its stored file
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param podcastId path string true "Podcast ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Podcast not found"
// @Router /admin/podcasts/{podcastId} [delete]
func (h *AdminHandler) DeletePodcast(c *gin.Context) {
	podcastID, err := primitive.ObjectIDFromHex(c.Param("podcastId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid podcast ID format")
		return
	}

	if err := h.catalogService.DeletePodcast(c.Request.Context(), podcastID); err != nil {
		if errors.Is(err, service.ErrCatalogItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete podcast")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// storeCatalogFile pulls the "file" form field through the upload gateway.
// It aborts the request itself on failure.
func (h *AdminHandler) storeCatalogFile(c *gin.Context, category storage.Category) (string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "File is required")
		return "", false
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return "", false
	}
	defer file.Close()

	key, err := h.uploads.StoreAs(
		c.Request.Context(),
		category,
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
		return "", false
	}
	return key, true
}
