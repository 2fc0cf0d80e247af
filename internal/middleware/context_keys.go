package middleware

import "github.com/gin-gonic/gin"

const (
	// userIDKey is the key used to store the authenticated user's ID.
	userIDKey = contextKey("userID")
	// roleKey is the key used to store the authenticated user's role.
	roleKey = contextKey("role")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userIDKey)); exists {
		userID, ok := v.(string)
		return userID, ok
	}
	// check in the request context as well
	if v, ok := c.Request.Context().Value(userIDKey).(string); ok {
		return v, true
	}
	return "", false
}

// GetRoleFromContext retrieves the authenticated user's role from the Gin context.
func GetRoleFromContext(c *gin.Context) (Role, bool) {
	if v, exists := c.Get(string(roleKey)); exists {
		role, ok := v.(Role)
		return role, ok
	}
	if v, ok := c.Request.Context().Value(roleKey).(Role); ok {
		return v, true
	}
	return "", false
}
