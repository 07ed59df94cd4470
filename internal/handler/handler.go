// Package handler contains the gin HTTP handlers. Each handler validates
// the session user placed on the context by the auth middleware, calls a
// service, and shapes the JSON response. Real errors are logged, never
// leaked to the caller.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UnauthorizedMessage is the single body every rejected request gets,
// whether the gate trips in the middleware or in a handler.
const UnauthorizedMessage = "unauthorised access not allowed"

// getUserID reads the authenticated user id set by the auth middleware.
// The id never comes from a request body.
func getUserID(c *gin.Context) (int, bool) {
	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
		return 0, false
	}

	uid, ok := userID.(int)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
		return 0, false
	}
	return uid, true
}
