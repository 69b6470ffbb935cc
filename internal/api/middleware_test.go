package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitlink/coaching-app/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "middleware-test-secret"

// stubResolver resolves every id in the allowed set, in any role of roles.
type stubResolver struct {
	existing map[primitive.ObjectID]domain.Role
}

func (s *stubResolver) ResolvePrincipal(ctx context.Context, role domain.Role, id primitive.ObjectID) error {
	if got, ok := s.existing[id]; ok && got == role {
		return nil
	}
	return errors.New("principal no longer exists")
}

func mintToken(t *testing.T, id primitive.ObjectID, role domain.Role, secret string, expiry time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid":  id.Hex(),
		"role": string(role),
		"exp":  time.Now().Add(expiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newProtectedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", mw, func(c *gin.Context) {
		id, _ := getUserIDFromContext(c)
		role, _ := getUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id.Hex(), "role": role})
	})
	return router
}

func doGet(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	clientID := primitive.NewObjectID()
	resolver := &stubResolver{existing: map[primitive.ObjectID]domain.Role{clientID: domain.RoleClient}}
	router := newProtectedRouter(AuthMiddleware(testSecret, resolver, domain.RoleClient))

	token := mintToken(t, clientID, domain.RoleClient, testSecret, time.Hour)
	w := doGet(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), clientID.Hex())
}

func TestAuthMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	resolver := &stubResolver{existing: map[primitive.ObjectID]domain.Role{}}
	router := newProtectedRouter(AuthMiddleware(testSecret, resolver, domain.RoleClient))

	assert.Equal(t, http.StatusUnauthorized, doGet(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(router, "not-a-bearer").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(router, "Bearer garbage.token.here").Code)
}

func TestAuthMiddlewareRejectsWrongSignature(t *testing.T) {
	clientID := primitive.NewObjectID()
	resolver := &stubResolver{existing: map[primitive.ObjectID]domain.Role{clientID: domain.RoleClient}}
	router := newProtectedRouter(AuthMiddleware(testSecret, resolver, domain.RoleClient))

	token := mintToken(t, clientID, domain.RoleClient, "other-secret", time.Hour)
	assert.Equal(t, http.StatusUnauthorized, doGet(router, "Bearer "+token).Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	clientID := primitive.NewObjectID()
	resolver := &stubResolver{existing: map[primitive.ObjectID]domain.Role{clientID: domain.RoleClient}}
	router := newProtectedRouter(AuthMiddleware(testSecret, resolver, domain.RoleClient))

	token := mintToken(t, clientID, domain.RoleClient, testSecret, -time.Minute)
	w := doGet(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAuthMiddlewareRejectsWrongRole(t *testing.T) {
	trainerID := primitive.NewObjectID()
	resolver := &stubResolver{existing: map[primitive.ObjectID]domain.Role{trainerID: domain.RoleTrainer}}
	// A trainer token cannot enter a client-only route.
	router := newProtectedRouter(AuthMiddleware(testSecret, resolver, domain.RoleClient))

	token := mintToken(t, trainerID, domain.RoleTrainer, testSecret, time.Hour)
	assert.Equal(t, http.StatusForbidden, doGet(router, "Bearer "+token).Code)
}

func TestAuthMiddlewareRejectsDeletedPrincipal(t *testing.T) {
	// Valid signature, but the account is gone.
	resolver := &stubResolver{existing: map[primitive.ObjectID]domain.Role{}}
	router := newProtectedRouter(AuthMiddleware(testSecret, resolver, domain.RoleClient))

	token := mintToken(t, primitive.NewObjectID(), domain.RoleClient, testSecret, time.Hour)
	assert.Equal(t, http.StatusUnauthorized, doGet(router, "Bearer "+token).Code)
}

func TestAdminMiddlewareAcceptsStaticToken(t *testing.T) {
	resolver := &stubResolver{existing: map[primitive.ObjectID]domain.Role{}}
	router := newProtectedRouter(AdminAuthMiddleware(testSecret, "internal-ops-token", resolver))

	w := doGet(router, "Bearer internal-ops-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(domain.RoleAdmin))
}

func TestAdminMiddlewareIgnoresStaticTokenWhenUnconfigured(t *testing.T) {
	resolver := &stubResolver{existing: map[primitive.ObjectID]domain.Role{}}
	router := newProtectedRouter(AdminAuthMiddleware(testSecret, "", resolver))

	// Without a configured static token the literal value is just an invalid JWT.
	assert.Equal(t, http.StatusUnauthorized, doGet(router, "Bearer internal-ops-token").Code)
}

func TestAdminMiddlewareAcceptsAdminJWT(t *testing.T) {
	adminID := primitive.NewObjectID()
	resolver := &stubResolver{existing: map[primitive.ObjectID]domain.Role{adminID: domain.RoleAdmin}}
	router := newProtectedRouter(AdminAuthMiddleware(testSecret, "internal-ops-token", resolver))

	token := mintToken(t, adminID, domain.RoleAdmin, testSecret, time.Hour)
	assert.Equal(t, http.StatusOK, doGet(router, "Bearer "+token).Code)

	// A client token is not an admin token.
	clientID := primitive.NewObjectID()
	resolver.existing[clientID] = domain.RoleClient
	clientToken := mintToken(t, clientID, domain.RoleClient, testSecret, time.Hour)
	assert.Equal(t, http.StatusForbidden, doGet(router, "Bearer "+clientToken).Code)
}
