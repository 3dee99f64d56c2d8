package middleware

import (
	"context"  // Context for role lookups
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// RoleSource resolves the stored role of a user by email. The gorm-backed
// store implements it in production; tests substitute an in-memory fake.
type RoleSource interface {
	RoleByEmail(ctx context.Context, email string) (string, error)
}

// RoleRequiredMiddleware checks the user's stored role from the database on
// each request. A user with no record at all is denied the same way as one
// with the wrong role.
func RoleRequiredMiddleware(users RoleSource, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, exists := c.Get(EmailKey) // Get verified email from context
		// Check if the email exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Look up the stored role for the verified email
		storedRole, err := users.RoleByEmail(c.Request.Context(), email.(string))
		if err != nil {
			// If user not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": role + " access required"})
			return
		}
		// Check if the stored role matches the required role
		if storedRole != role {
			// If not, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": role + " access required"})
			return
		}
		// Role matches, proceed to the next handler
		c.Next()
	}
}

// SelfOnlyMiddleware restricts a request to the owner of the resource: the
// email path parameter must equal the verified identity's email.
func SelfOnlyMiddleware(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, exists := c.Get(EmailKey) // Get verified email from context
		// Check if the email exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Compare the path email with the verified email
		if c.Param(param) != email.(string) {
			// If they differ, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		// Same user, proceed to the next handler
		c.Next()
	}
}
