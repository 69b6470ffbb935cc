package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memBookRepo struct {
	mu    sync.Mutex
	books map[primitive.ObjectID]*domain.Book
}

func newMemBookRepo() *memBookRepo { return &memBookRepo{books: map[primitive.ObjectID]*domain.Book{}} }

func (r *memBookRepo) Create(ctx context.Context, book *domain.Book) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *book
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = time.Now()
	r.books[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memBookRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBookRepo) GetAll(ctx context.Context) ([]domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBookRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

type memContentRepo struct {
	mu       sync.Mutex
	contents map[primitive.ObjectID]*domain.Content
}

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{contents: map[primitive.ObjectID]*domain.Content{}}
}

func (r *memContentRepo) Create(ctx context.Context, content *domain.Content) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *content
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = time.Now()
	r.contents[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memContentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memContentRepo) GetAll(ctx context.Context) ([]domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Content, 0, len(r.contents))
	for _, c := range r.contents {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memContentRepo) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Content
	for _, c := range r.contents {
		if c.TrainerID == trainerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memContentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contents[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.contents, id)
	return nil
}

// memPodcastRepo reuses the book shape through a distinct store.
type memPodcastRepo struct {
	mu       sync.Mutex
	podcasts map[primitive.ObjectID]*domain.Podcast
}

func newMemPodcastRepo() *memPodcastRepo {
	return &memPodcastRepo{podcasts: map[primitive.ObjectID]*domain.Podcast{}}
}

func (r *memPodcastRepo) Create(ctx context.Context, podcast *domain.Podcast) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *podcast
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = time.Now()
	r.podcasts[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memPodcastRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Podcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.podcasts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPodcastRepo) GetAll(ctx context.Context) ([]domain.Podcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Podcast, 0, len(r.podcasts))
	for _, p := range r.podcasts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memPodcastRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.podcasts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.podcasts, id)
	return nil
}

func newCatalogFixture(t *testing.T) (*memFiles, CatalogService) {
	t.Helper()
	files := newMemFiles()
	svc := NewCatalogService(newMemBookRepo(), newMemPodcastRepo(), newMemContentRepo(), files)
	return files, svc
}

func TestBookLifecycle(t *testing.T) {
	files, svc := newCatalogFixture(t)
	key := "books/123-abc.pdf"
	require.NoError(t, files.Save(context.Background(), key, "application/pdf", strings.NewReader("%PDF-1.4")))

	book, err := svc.AddBook(context.Background(), "Eat Well", "Nutrition basics", key)
	require.NoError(t, err)

	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 1)

	got, body, err := svc.OpenBook(context.Background(), book.ID)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "Eat Well", got.Title)

	require.NoError(t, svc.DeleteBook(context.Background(), book.ID))
	assert.False(t, files.has(key))

	err = svc.DeleteBook(context.Background(), book.ID)
	assert.ErrorIs(t, err, ErrCatalogItemNotFound)
}

func TestAddBookValidation(t *testing.T) {
	_, svc := newCatalogFixture(t)
	_, err := svc.AddBook(context.Background(), "", "intro", "books/x.pdf")
	assert.ErrorIs(t, err, ErrInvalidCatalogItem)
	_, err = svc.AddBook(context.Background(), "title", "intro", "")
	assert.ErrorIs(t, err, ErrInvalidCatalogItem)
}

func TestOpenPodcastMissingFile(t *testing.T) {
	_, svc := newCatalogFixture(t)
	podcast, err := svc.AddPodcast(context.Background(), "Episode 1", "Intro episode", "podcasts/missing.mp3")
	require.NoError(t, err)

	_, _, err = svc.OpenPodcast(context.Background(), podcast.ID)
	assert.ErrorIs(t, err, ErrCatalogItemNotFound)
}

func TestContentOwnership(t *testing.T) {
	_, svc := newCatalogFixture(t)
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	content, err := svc.AddContent(context.Background(), owner, ContentInput{
		Title:       "Mobility drills",
		Description: "Follow along",
		Type:        domain.ContentVideo,
		FileURL:     "https://cdn.example.com/mobility.mp4",
	})
	require.NoError(t, err)

	mine, err := svc.ListContentByTrainer(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	err = svc.DeleteContent(context.Background(), other, content.ID)
	assert.ErrorIs(t, err, ErrContentNotOwned)

	require.NoError(t, svc.DeleteContent(context.Background(), owner, content.ID))

	all, err := svc.ListContent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddContentRejectsBadType(t *testing.T) {
	_, svc := newCatalogFixture(t)
	_, err := svc.AddContent(context.Background(), primitive.NewObjectID(), ContentInput{
		Title:       "x",
		Description: "y",
		Type:        "podcast",
		FileURL:     "https://example.com/x",
	})
	assert.ErrorIs(t, err, ErrInvalidCatalogItem)
}

func TestAdminModerationQueue(t *testing.T) {
	clientRepo := newMemClientRepo()
	trainerRepo := newMemTrainerRepo()
	svc := NewAdminService(clientRepo, trainerRepo, newMemFiles())

	pending := seedTrainer(t, trainerRepo, "bob", domain.RequestPending, 10, time.Now())
	seedTrainer(t, trainerRepo, "quiet", domain.RequestNotSent, 10, time.Now())

	queue, err := svc.ListTrainerRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pending, queue[0].ID)

	trainer, err := svc.ApproveTrainerRequest(context.Background(), pending)
	require.NoError(t, err)
	assert.True(t, trainer.IsApproved())

	// Settling twice conflicts.
	_, err = svc.ApproveTrainerRequest(context.Background(), pending)
	assert.ErrorIs(t, err, ErrRequestNotPending)

	_, err = svc.RejectTrainerRequest(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrTrainerNotFound)
}

func TestAdminListClients(t *testing.T) {
	clientRepo := newMemClientRepo()
	svc := NewAdminService(clientRepo, newMemTrainerRepo(), newMemFiles())

	seedClient(t, clientRepo, "alice")
	seedClient(t, clientRepo, "carol")

	clients, err := svc.ListClients(context.Background())
	require.NoError(t, err)
	assert.Len(t, clients, 2)
	for _, c := range clients {
		assert.Empty(t, c.PasswordHash)
	}
}

func TestOpenTrainerCertificate(t *testing.T) {
	trainerRepo := newMemTrainerRepo()
	files := newMemFiles()
	svc := NewAdminService(newMemClientRepo(), trainerRepo, files)

	withCert := seedTrainer(t, trainerRepo, "bob", domain.RequestPending, 10, time.Now())
	trainerRepo.trainers[withCert].Certificate = "certificates/bob.pdf"
	require.NoError(t, files.Save(context.Background(), "certificates/bob.pdf", "application/pdf", strings.NewReader("%PDF-1.4")))
	withoutCert := seedTrainer(t, trainerRepo, "quiet", domain.RequestPending, 10, time.Now())

	trainer, body, err := svc.OpenTrainerCertificate(context.Background(), withCert)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Empty(t, trainer.PasswordHash)

	_, _, err = svc.OpenTrainerCertificate(context.Background(), withoutCert)
	assert.ErrorIs(t, err, ErrCertificateNotFound)

	_, _, err = svc.OpenTrainerCertificate(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrTrainerNotFound)
}
