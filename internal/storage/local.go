package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStorage implements FileStorage on the local filesystem, mirroring the
// uploads/ directory tree the platform has always used.
type localStorage struct {
	root string
}

// NewLocalStorage creates a disk-backed FileStorage rooted at root.
func NewLocalStorage(root string) (FileStorage, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}
	return &localStorage{root: root}, nil
}

// path resolves a key inside the root, rejecting traversal outside it.
func (s *localStorage) path(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Save writes the object to disk, creating the category directory on demand.
func (s *localStorage) Save(ctx context.Context, key string, contentType string, body io.Reader) error {
	dest, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(dest)
		return err
	}
	return f.Close()
}

// Open returns a reader over the stored file.
func (s *localStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	dest, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the stored file.
func (s *localStorage) Delete(ctx context.Context, key string) error {
	dest, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}
