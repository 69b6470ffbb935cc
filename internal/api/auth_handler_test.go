package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/service"
	"fitlink/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubAuthService drives the auth handler without touching a real backend.
type stubAuthService struct {
	registerErr error
	loginErr    error
	client      *domain.Client
	token       string
}

func (s *stubAuthService) RegisterClient(ctx context.Context, name, email, password string) (*domain.Client, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.client, nil
}

func (s *stubAuthService) RegisterTrainer(ctx context.Context, signup service.TrainerSignup) (*domain.Trainer, error) {
	return nil, s.registerErr
}

func (s *stubAuthService) LoginClient(ctx context.Context, email, password string) (string, *domain.Client, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return s.token, s.client, nil
}

func (s *stubAuthService) LoginTrainer(ctx context.Context, email, password string) (string, *domain.Trainer, error) {
	return "", nil, s.loginErr
}

func (s *stubAuthService) LoginAdmin(ctx context.Context, email, password string) (string, *domain.Admin, error) {
	return "", nil, s.loginErr
}

func (s *stubAuthService) ResolvePrincipal(ctx context.Context, role domain.Role, id primitive.ObjectID) error {
	return nil
}

func (s *stubAuthService) EnsureAdminAccount(ctx context.Context, email, password string) error {
	return nil
}

func newAuthRouter(t *testing.T, svc service.AuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	handler := NewAuthHandler(svc, storage.NewGateway(files))

	router := gin.New()
	router.POST("/auth/client/register", handler.RegisterClient)
	router.POST("/auth/client/login", handler.LoginClient)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterClientReturnsCreated(t *testing.T) {
	client := &domain.Client{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com"}
	router := newAuthRouter(t, &stubAuthService{client: client})

	w := postJSON(router, "/auth/client/register",
		`{"name":"Alice","email":"alice@example.com","password":"supersecret"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), client.ID.Hex())
	// The password hash never leaks.
	assert.NotContains(t, w.Body.String(), "passwordHash")
}

func TestRegisterClientValidation(t *testing.T) {
	router := newAuthRouter(t, &stubAuthService{})

	// Missing password.
	w := postJSON(router, "/auth/client/register", `{"name":"Alice","email":"alice@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Password shorter than 8 characters.
	w = postJSON(router, "/auth/client/register",
		`{"name":"Alice","email":"alice@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Not an email.
	w = postJSON(router, "/auth/client/register",
		`{"name":"Alice","email":"not-an-email","password":"supersecret"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterClientDuplicateEmailConflicts(t *testing.T) {
	router := newAuthRouter(t, &stubAuthService{registerErr: service.ErrUserAlreadyExists})

	w := postJSON(router, "/auth/client/register",
		`{"name":"Alice","email":"alice@example.com","password":"supersecret"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginClientReturnsToken(t *testing.T) {
	client := &domain.Client{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com"}
	router := newAuthRouter(t, &stubAuthService{client: client, token: "signed.jwt.token"})

	w := postJSON(router, "/auth/client/login", `{"email":"alice@example.com","password":"supersecret"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "signed.jwt.token")
}

func TestLoginClientInvalidCredentials(t *testing.T) {
	router := newAuthRouter(t, &stubAuthService{loginErr: service.ErrAuthenticationFailed})

	w := postJSON(router, "/auth/client/login", `{"email":"alice@example.com","password":"wrongpass"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginClientInternalErrorIsGeneric(t *testing.T) {
	router := newAuthRouter(t, &stubAuthService{loginErr: errors.New("connection reset by peer")})

	w := postJSON(router, "/auth/client/login", `{"email":"alice@example.com","password":"supersecret"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Raw internal errors never reach the client.
	assert.NotContains(t, w.Body.String(), "connection reset")
}
