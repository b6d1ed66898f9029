package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the authenticated user's ID in the request context.
const userIDKey = contextKey("userID")

// usernameKey is the key used to store the authenticated user's display name.
// The import audit trail records who uploaded each file.
const usernameKey = contextKey("username")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if v := c.Request.Context().Value(userIDKey); v != nil {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}

// GetUsernameFromContext retrieves the authenticated username from the Gin context.
func GetUsernameFromContext(c *gin.Context) (string, bool) {
	if v := c.Request.Context().Value(usernameKey); v != nil {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}
