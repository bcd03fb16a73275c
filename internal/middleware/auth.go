package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillboard/quill-backend/internal/common"
	"github.com/quillboard/quill-backend/internal/repository"
)

const ctxUserID = "userID"

// TokenAuth authenticates the opaque bearer token and aborts with 401
// when missing or invalid
func TokenAuth(tokens repository.TokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveToken(c, tokens)
		if !ok {
			common.ErrorResponse(c, 401, "invalid or missing token", nil)
			c.Abort()
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// OptionalTokenAuth resolves the bearer token when present but lets
// anonymous requests through. Used on read endpoints where the caller's
// identity only enriches the response (rated flags) and on create
// endpoints that allow anonymous authors.
func OptionalTokenAuth(tokens repository.TokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := resolveToken(c, tokens); ok {
			c.Set(ctxUserID, userID)
		}
		c.Next()
	}
}

func resolveToken(c *gin.Context, tokens repository.TokenRepository) (int64, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") {
		return 0, false
	}

	token, err := tokens.FindByKey(parts[1])
	if err != nil {
		return 0, false
	}
	return token.UserID, true
}

// GetUserID extracts the authenticated user ID from context, 0 when
// anonymous
func GetUserID(c *gin.Context) int64 {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return 0
	}
	if id, ok := v.(int64); ok {
		return id
	}
	return 0
}

// GetUserIDPtr returns the authenticated user ID or nil when anonymous
func GetUserIDPtr(c *gin.Context) *int64 {
	id := GetUserID(c)
	if id == 0 {
		return nil
	}
	return &id
}
