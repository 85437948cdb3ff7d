package middleware

import (
	"context"  // Context for store lookups
	"net/http" // HTTP status codes

	"networth/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// APIKeyHeader carries the caller's API key
const APIKeyHeader = "api-key"

// Context keys set by the middleware
const (
	ContextAPIKey = "apiKey"
	ContextUser   = "user"
)

// Authenticator resolves a user from its name and API key
type Authenticator interface {
	Authenticate(ctx context.Context, name, apiKey string) (*domain.User, error)
}

// RequireAPIKey rejects requests without an api-key header and stores the key in the context
func RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader) // Get api-key header
		if key == "" {
			// If missing, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "API key is required"})
			return
		}
		c.Set(ContextAPIKey, key) // Store key in context
		c.Next()                  // Proceed to the next handler
	}
}

// UserFromPath authenticates the user named by the :name path parameter on each request.
// Failures are passed to onError, which is expected to abort the request.
func UserFromPath(auth Authenticator, onError func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), c.Param("name"), c.GetString(ContextAPIKey))
		if err != nil {
			onError(c, err) // Unknown user or wrong key
			return
		}
		c.Set(ContextUser, user) // Store authenticated user in context
		c.Next()
	}
}

// CurrentUser returns the user stored by UserFromPath
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
