package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the destination directory class for an uploaded file,
// determined by its declared MIME type.
type Category string

const (
	CategoryPodcasts     Category = "podcasts"
	CategoryBooks        Category = "books"
	CategoryVideos       Category = "videos"
	CategoryCertificates Category = "certificates"
)

// Per-category size ceilings.
const (
	maxCertificateSize = 5 << 20   // 5 MB
	maxMediaSize       = 50 << 20  // 50 MB for books and podcasts
	maxVideoSize       = 100 << 20 // 100 MB
)

// ValidationError marks an upload rejected before anything was persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "upload rejected: " + e.Reason
}

// CategoryFor routes a declared MIME type to its storage category.
// Returns a ValidationError for types the platform does not accept.
func CategoryFor(contentType string) (Category, error) {
	switch {
	case strings.HasPrefix(contentType, "audio/"):
		return CategoryPodcasts, nil
	case contentType == "application/pdf":
		return CategoryBooks, nil
	case strings.HasPrefix(contentType, "video/"):
		return CategoryVideos, nil
	case strings.HasPrefix(contentType, "image/"):
		return CategoryCertificates, nil
	default:
		return "", &ValidationError{Reason: fmt.Sprintf("unsupported content type %q", contentType)}
	}
}

// SizeLimit returns the ceiling in bytes for a category.
func SizeLimit(category Category) int64 {
	switch category {
	case CategoryVideos:
		return maxVideoSize
	case CategoryCertificates:
		return maxCertificateSize
	default:
		return maxMediaSize
	}
}

// allowedIn reports whether a MIME type may land in the given category.
// Certificates additionally accept PDFs (scanned documents).
func allowedIn(category Category, contentType string) bool {
	switch category {
	case CategoryPodcasts:
		return strings.HasPrefix(contentType, "audio/")
	case CategoryBooks:
		return contentType == "application/pdf"
	case CategoryVideos:
		return strings.HasPrefix(contentType, "video/")
	case CategoryCertificates:
		return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
	default:
		return false
	}
}

// ObjectKey builds a collision-resistant key for an upload: category
// directory, unix-millis timestamp, a random suffix and the original
// extension.
func ObjectKey(category Category, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return fmt.Sprintf("%s/%d-%s%s", category, time.Now().UnixMilli(), uuid.NewString(), ext)
}

// Gateway validates and persists binary uploads. It owns the MIME allow-list
// and the per-category size ceilings; nothing is written when validation
// fails.
type Gateway struct {
	files FileStorage
}

// NewGateway creates an upload gateway over the given storage backend.
func NewGateway(files FileStorage) *Gateway {
	return &Gateway{files: files}
}

// StoreAs validates the upload against a fixed category and persists it,
// returning the generated object key.
func (g *Gateway) StoreAs(ctx context.Context, category Category, originalName, contentType string, size int64, body io.Reader) (string, error) {
	if !allowedIn(category, contentType) {
		return "", &ValidationError{Reason: fmt.Sprintf("content type %q is not allowed for %s", contentType, category)}
	}
	if size <= 0 {
		return "", &ValidationError{Reason: "empty upload"}
	}
	if limit := SizeLimit(category); size > limit {
		return "", &ValidationError{Reason: fmt.Sprintf("file exceeds the %d byte limit for %s", limit, category)}
	}

	key := ObjectKey(category, originalName)
	if err := g.files.Save(ctx, key, contentType, body); err != nil {
		return "", err
	}
	return key, nil
}

// Store routes the upload by its declared MIME type and persists it.
func (g *Gateway) Store(ctx context.Context, originalName, contentType string, size int64, body io.Reader) (string, error) {
	category, err := CategoryFor(contentType)
	if err != nil {
		return "", err
	}
	return g.StoreAs(ctx, category, originalName, contentType, size, body)
}
