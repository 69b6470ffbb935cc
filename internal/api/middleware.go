package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fitlink/coaching-app/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

// jwtClaims mirrors the payload the auth service signs.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// PrincipalResolver checks that a token subject still exists. The auth
// service implements it.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, role domain.Role, id primitive.ObjectID) error
}

// AuthMiddleware creates a Gin middleware that authenticates the request for
// exactly one role. A valid token for a different role is rejected, and a
// token whose account has since been deleted is treated as unauthenticated.
func AuthMiddleware(jwtSecret string, resolver PrincipalResolver, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerToken(c, jwtSecret)
		if !ok {
			return
		}
		authenticate(c, resolver, claims, role)
	}
}

// AdminAuthMiddleware authenticates admin requests. Besides admin JWTs it
// accepts the configured static token, when one is configured, so internal
// tooling can call the moderation endpoints without a login round-trip.
func AdminAuthMiddleware(jwtSecret, staticToken string, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if staticToken != "" {
			if raw, ok := bearerToken(c.GetHeader("Authorization")); ok && raw == staticToken {
				c.Set(ContextUserIDKey, "")
				c.Set(ContextUserRoleKey, domain.RoleAdmin)
				c.Next()
				return
			}
		}

		claims, ok := parseBearerToken(c, jwtSecret)
		if !ok {
			return
		}
		authenticate(c, resolver, claims, domain.RoleAdmin)
	}
}

// bearerToken extracts the raw token from an Authorization header.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// parseBearerToken validates the Authorization header and signature. It
// aborts the request itself on failure.
func parseBearerToken(c *gin.Context, jwtSecret string) (*jwtClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
		return nil, false
	}

	tokenString, ok := bearerToken(authHeader)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
		return nil, false
	}

	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			abortWithError(c, http.StatusUnauthorized, "Token has expired")
		} else {
			abortWithError(c, http.StatusUnauthorized, "Invalid token")
		}
		return nil, false
	}

	if !token.Valid || claims.UserID == "" || claims.Role == "" {
		abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
		return nil, false
	}
	return claims, true
}

// authenticate enforces the role and principal existence, then stores the
// identity in the request context.
func authenticate(c *gin.Context, resolver PrincipalResolver, claims *jwtClaims, role domain.Role) {
	if claims.Role != role {
		abortWithError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
		return
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid token subject")
		return
	}
	if err := resolver.ResolvePrincipal(c.Request.Context(), role, id); err != nil {
		abortWithError(c, http.StatusUnauthorized, "Account no longer exists")
		return
	}

	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextUserRoleKey, role)
	c.Next()
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// getUserIDFromContext returns the authenticated principal's ObjectID.
func getUserIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	idStr, ok := raw.(string)
	if !ok || idStr == "" {
		return primitive.NilObjectID, errors.New("invalid user ID in context")
	}
	return primitive.ObjectIDFromHex(idStr)
}

// getUserRoleFromContext returns the authenticated principal's role.
func getUserRoleFromContext(c *gin.Context) (domain.Role, bool) {
	raw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := raw.(domain.Role)
	return role, ok
}
