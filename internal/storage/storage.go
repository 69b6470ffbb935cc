package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when a stored object does not exist.
var ErrObjectNotFound = errors.New("object not found in storage")

// FileStorage defines the interface for object storage operations.
// Keys are slash-separated paths ("videos/169...-abc.mp4"); the same key
// layout works for the local-disk backend and for S3.
type FileStorage interface {
	// Save writes the object under the given key, replacing any previous
	// content.
	Save(ctx context.Context, key string, contentType string, body io.Reader) error

	// Open returns a reader over the object's content. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object. Backends that can detect a missing key
	// return ErrObjectNotFound; callers treat that as success when cleaning
	// up after a record delete.
	Delete(ctx context.Context, key string) error
}
