package service

import (
	"context"
	"errors"
	"io"
	"log"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/repository"
	"fitlink/coaching-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCatalogItemNotFound = errors.New("catalog item not found")
	ErrInvalidCatalogItem  = errors.New("catalog item is missing required fields")
	ErrContentNotOwned     = errors.New("content belongs to another trainer")
)

// ContentInput carries the fields of a trainer-published content entry.
type ContentInput struct {
	Title       string
	Description string
	Type        domain.ContentType
	FileURL     string
}

// CatalogService manages the shared libraries: admin-curated books and
// podcasts, and trainer-published content.
type CatalogService interface {
	AddBook(ctx context.Context, title, intro, fileKey string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]domain.Book, error)
	OpenBook(ctx context.Context, bookID primitive.ObjectID) (*domain.Book, io.ReadCloser, error)
	DeleteBook(ctx context.Context, bookID primitive.ObjectID) error

	AddPodcast(ctx context.Context, title, description, fileKey string) (*domain.Podcast, error)
	ListPodcasts(ctx context.Context) ([]domain.Podcast, error)
	OpenPodcast(ctx context.Context, podcastID primitive.ObjectID) (*domain.Podcast, io.ReadCloser, error)
	DeletePodcast(ctx context.Context, podcastID primitive.ObjectID) error

	AddContent(ctx context.Context, trainerID primitive.ObjectID, input ContentInput) (*domain.Content, error)
	ListContent(ctx context.Context) ([]domain.Content, error)
	ListContentByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Content, error)
	DeleteContent(ctx context.Context, trainerID, contentID primitive.ObjectID) error
}

type catalogService struct {
	bookRepo    repository.BookRepository
	podcastRepo repository.PodcastRepository
	contentRepo repository.ContentRepository
	files       storage.FileStorage
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	bookRepo repository.BookRepository,
	podcastRepo repository.PodcastRepository,
	contentRepo repository.ContentRepository,
	files storage.FileStorage,
) CatalogService {
	return &catalogService{bookRepo: bookRepo, podcastRepo: podcastRepo, contentRepo: contentRepo, files: files}
}

// --- Books ---

func (s *catalogService) AddBook(ctx context.Context, title, intro, fileKey string) (*domain.Book, error) {
	if title == "" || intro == "" || fileKey == "" {
		return nil, ErrInvalidCatalogItem
	}
	book := &domain.Book{Title: title, Intro: intro, FileKey: fileKey}
	bookID, err := s.bookRepo.Create(ctx, book)
	if err != nil {
		return nil, err
	}
	book.ID = bookID
	return book, nil
}

func (s *catalogService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.bookRepo.GetAll(ctx)
}

func (s *catalogService) OpenBook(ctx context.Context, bookID primitive.ObjectID) (*domain.Book, io.ReadCloser, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrCatalogItemNotFound
		}
		return nil, nil, err
	}
	body, err := s.files.Open(ctx, book.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrCatalogItemNotFound
		}
		return nil, nil, err
	}
	return book, body, nil
}

func (s *catalogService) DeleteBook(ctx context.Context, bookID primitive.ObjectID) error {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCatalogItemNotFound
		}
		return err
	}
	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		return err
	}
	s.removeFile(ctx, book.FileKey)
	return nil
}

// --- Podcasts ---

func (s *catalogService) AddPodcast(ctx context.Context, title, description, fileKey string) (*domain.Podcast, error) {
	if title == "" || description == "" || fileKey == "" {
		return nil, ErrInvalidCatalogItem
	}
	podcast := &domain.Podcast{Title: title, Description: description, FileKey: fileKey}
	podcastID, err := s.podcastRepo.Create(ctx, podcast)
	if err != nil {
		return nil, err
	}
	podcast.ID = podcastID
	return podcast, nil
}

func (s *catalogService) ListPodcasts(ctx context.Context) ([]domain.Podcast, error) {
	return s.podcastRepo.GetAll(ctx)
}

func (s *catalogService) OpenPodcast(ctx context.Context, podcastID primitive.ObjectID) (*domain.Podcast, io.ReadCloser, error) {
	podcast, err := s.podcastRepo.GetByID(ctx, podcastID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrCatalogItemNotFound
		}
		return nil, nil, err
	}
	body, err := s.files.Open(ctx, podcast.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrCatalogItemNotFound
		}
		return nil, nil, err
	}
	return podcast, body, nil
}

func (s *catalogService) DeletePodcast(ctx context.Context, podcastID primitive.ObjectID) error {
	podcast, err := s.podcastRepo.GetByID(ctx, podcastID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCatalogItemNotFound
		}
		return err
	}
	if err := s.podcastRepo.Delete(ctx, podcastID); err != nil {
		return err
	}
	s.removeFile(ctx, podcast.FileKey)
	return nil
}

// --- Trainer content ---

func (s *catalogService) AddContent(ctx context.Context, trainerID primitive.ObjectID, input ContentInput) (*domain.Content, error) {
	if input.Title == "" || input.Description == "" || input.FileURL == "" {
		return nil, ErrInvalidCatalogItem
	}
	switch input.Type {
	case domain.ContentVideo, domain.ContentAudio, domain.ContentDocument:
	default:
		return nil, ErrInvalidCatalogItem
	}

	content := &domain.Content{
		TrainerID:   trainerID,
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		FileURL:     input.FileURL,
	}
	contentID, err := s.contentRepo.Create(ctx, content)
	if err != nil {
		return nil, err
	}
	content.ID = contentID
	return content, nil
}

func (s *catalogService) ListContent(ctx context.Context) ([]domain.Content, error) {
	return s.contentRepo.GetAll(ctx)
}

func (s *catalogService) ListContentByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Content, error) {
	return s.contentRepo.GetByTrainerID(ctx, trainerID)
}

// DeleteContent removes an entry. Trainers may only delete their own.
func (s *catalogService) DeleteContent(ctx context.Context, trainerID, contentID primitive.ObjectID) error {
	content, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCatalogItemNotFound
		}
		return err
	}
	if content.TrainerID != trainerID {
		return ErrContentNotOwned
	}
	return s.contentRepo.Delete(ctx, contentID)
}

// removeFile best-effort deletes a stored blob after its record is gone.
func (s *catalogService) removeFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.Printf("WARN: failed to delete stored file %s: %v", key, err)
	}
}
