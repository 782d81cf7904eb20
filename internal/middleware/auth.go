package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/slack-lite/internal/logger"
	"github.com/thereayou/slack-lite/internal/services"
	"github.com/thereayou/slack-lite/pkg/auth"
)

const (
	UserIDKey = "userID"
	TokenKey  = "token"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// RequireAuth aborts with 401 unless the request carries a valid, unrevoked
// bearer token.
func RequireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		if !authenticate(c, authn, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present but never
// aborts. Read endpoints use it so anonymous callers get empty results.
func OptionalAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err == nil {
			if userID, err := authn.Authenticate(c.Request.Context(), token); err == nil {
				setCaller(c, userID, token)
			}
		}
		c.Next()
	}
}

// WSAuth accepts the token from the "token" query parameter as well as the
// Authorization header, since browsers cannot set headers on WebSocket
// upgrades.
func WSAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			header := c.GetHeader("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = strings.TrimSpace(parts[1])
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if !authenticate(c, authn, token) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, authn Authenticator, token string) bool {
	userID, err := authn.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return false
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate token"})
		return false
	}
	setCaller(c, userID, token)
	return true
}

func setCaller(c *gin.Context, userID uuid.UUID, token string) {
	c.Set(UserIDKey, userID)
	c.Set(TokenKey, token)
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{UserID: userID.String()})
	c.Request = c.Request.WithContext(ctx)
}

// CallerID returns the authenticated user, or uuid.Nil for anonymous requests.
func CallerID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// Token returns the bearer token the caller authenticated with.
func Token(c *gin.Context) string {
	return c.GetString(TokenKey)
}
