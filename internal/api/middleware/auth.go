// Package middleware provides gin middleware shared by the API handlers.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutriwise/nutriwise-api/internal/service/auth"
)

// Context keys set by the auth middleware.
const (
	ContextAccountID = "account_id"
	ContextRole      = "account_role"
)

// TokenValidator verifies bearer tokens and returns their claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// RequireRole authenticates the request's bearer token and rejects accounts
// whose role does not match. The account id and role land in the gin context
// for the handlers downstream.
func RequireRole(validator TokenValidator, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		if claims.Role != role {
			abortUnauthorized(c, "insufficient permissions")
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// AccountID returns the authenticated account id set by RequireRole.
func AccountID(c *gin.Context) uint {
	id, _ := c.Get(ContextAccountID)
	accountID, _ := id.(uint)
	return accountID
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
