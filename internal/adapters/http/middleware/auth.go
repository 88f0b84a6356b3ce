package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quoteapp/quoted/internal/adapters/http/dto"
)

const (
	// ContextKeyBearer is the gin context key for the extracted bearer token.
	ContextKeyBearer = "bearer_token"

	// ctxKeyBearer is the context key for the bearer token in context.Context.
	ctxKeyBearer contextKey = "bearer_token"

	bearerPrefix = "Bearer "
)

// BearerFromContext extracts the caller's bearer token from context.Context.
// Returns empty string if not set or if ctx is nil. The backend gateway uses
// this to forward the caller's token instead of its own.
func BearerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if token, ok := ctx.Value(ctxKeyBearer).(string); ok {
		return token
	}

	return ""
}

// ContextWithBearer stores a bearer token in the context.
func ContextWithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyBearer, token)
}

// BearerToken returns middleware that extracts the Authorization bearer
// token into the request context. The token is never validated here; it is
// an opaque credential forwarded to the backend, which is the authority.
// Requests without a token pass through anonymously.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token != "" {
			c.Set(ContextKeyBearer, token)
			c.Request = c.Request.WithContext(ContextWithBearer(c.Request.Context(), token))
		}

		c.Next()
	}
}

// RequireBearer returns middleware that rejects requests without a bearer
// token with 401. Use on user-scoped routes.
func RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			dto.AbortWithErrorCode(c, dto.ErrorCodeUnauthorized, "bearer token required")
			return
		}

		c.Set(ContextKeyBearer, token)
		c.Request = c.Request.WithContext(ContextWithBearer(c.Request.Context(), token))
		c.Next()
	}
}

// GetBearer retrieves the bearer token from the gin context.
// Returns empty string if not present.
func GetBearer(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyBearer)
}

// extractBearer parses the Authorization header. Only the Bearer scheme is
// recognized; the match is case-insensitive per RFC 7235.
func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) <= len(bearerPrefix) {
		return ""
	}

	if !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(header[len(bearerPrefix):])
}
