package api

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogHandler serves the shared libraries to clients and admins.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- Response Structs ---

type BookResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Intro     string    `json:"intro"`
	CreatedAt time.Time `json:"createdAt"`
}

type PodcastResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// streamAttachment writes the object body to the client as a file download.
// Headers are already sent when the copy starts, so a mid-stream failure
// cannot become an error response; it is logged instead.
func streamAttachment(c *gin.Context, filename, contentType string, body io.Reader) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		log.Printf("WARN: streaming %q aborted: %v", filename, err)
	}
}

// contentTypeForKey guesses a MIME type from the object key's extension.
func contentTypeForKey(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// --- Handler Methods ---

// GetBooks godoc
// @Summary List the book library
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BookResponse
// @Router /books [get]
func (h *CatalogHandler) GetBooks(c *gin.Context) {
	books, err := h.catalogService.ListBooks(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list books")
		return
	}

	resp := make([]BookResponse, 0, len(books))
	for i := range books {
		resp = append(resp, MapBookToResponse(&books[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadBook godoc
// @Summary Download a book file
// @Tags Catalog
// @Produce application/pdf
// @Security BearerAuth
// @Param bookId path string true "Book ID"
// @Success 200 {file} binary
// @Failure 404 {object} gin.H "Book or file not found"
// @Router /books/{bookId}/file [get]
func (h *CatalogHandler) DownloadBook(c *gin.Context) {
	bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid book ID format")
		return
	}

	book, body, err := h.catalogService.OpenBook(c.Request.Context(), bookID)
	if err != nil {
		if errors.Is(err, service.ErrCatalogItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to open book")
		}
		return
	}
	defer body.Close()

	streamAttachment(c, book.Title+".pdf", "application/pdf", body)
}

// GetPodcasts godoc
// @Summary List the podcast library
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PodcastResponse
// @Router /podcasts [get]
func (h *CatalogHandler) GetPodcasts(c *gin.Context) {
	podcasts, err := h.catalogService.ListPodcasts(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list podcasts")
		return
	}

	resp := make([]PodcastResponse, 0, len(podcasts))
	for i := range podcasts {
		resp = append(resp, MapPodcastToResponse(&podcasts[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadPodcast godoc
// @Summary Stream a podcast file
// @Tags Catalog
// @Produce audio/mpeg
// @Security BearerAuth
// @Param podcastId path string true "Podcast ID"
// @Success 200 {file} binary
// @Failure 404 {object} gin.H "Podcast or file not found"
// @Router /podcasts/{podcastId}/file [get]
func (h *CatalogHandler) DownloadPodcast(c *gin.Context) {
	podcastID, err := primitive.ObjectIDFromHex(c.Param("podcastId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid podcast ID format")
		return
	}

	podcast, body, err := h.catalogService.OpenPodcast(c.Request.Context(), podcastID)
	if err != nil {
		if errors.Is(err, service.ErrCatalogItemNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to open podcast")
		}
		return
	}
	defer body.Close()

	streamAttachment(c, podcast.Title, "audio/mpeg", body)
}

// GetAllContent godoc
// @Summary List every trainer-published content entry
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ContentResponse
// @Router /content [get]
func (h *CatalogHandler) GetAllContent(c *gin.Context) {
	content, err := h.catalogService.ListContent(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list content")
		return
	}

	resp := make([]ContentResponse, 0, len(content))
	for i := range content {
		resp = append(resp, MapContentToResponse(&content[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// --- Mappers ---

// MapBookToResponse converts a domain Book to its DTO. The file key stays
// internal; downloads go through the file endpoint.
func MapBookToResponse(book *domain.Book) BookResponse {
	if book == nil {
		return BookResponse{}
	}
	return BookResponse{
		ID:        book.ID.Hex(),
		Title:     book.Title,
		Intro:     book.Intro,
		CreatedAt: book.CreatedAt,
	}
}

// MapPodcastToResponse converts a domain Podcast to its DTO.
func MapPodcastToResponse(podcast *domain.Podcast) PodcastResponse {
	if podcast == nil {
		return PodcastResponse{}
	}
	return PodcastResponse{
		ID:          podcast.ID.Hex(),
		Title:       podcast.Title,
		Description: podcast.Description,
		CreatedAt:   podcast.CreatedAt,
	}
}
