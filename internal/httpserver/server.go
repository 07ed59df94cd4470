package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retrack/internal/handler"
	"retrack/internal/session"
	"retrack/internal/util"
)

// AuthMiddleware verifies the bearer token and checks that the session it
// names is still live in Redis. A revoked session fails even when the JWT
// itself has not expired.
func AuthMiddleware(jwtSecret string, sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": handler.UnauthorizedMessage})
			c.Abort()
			return
		}

		userID, sessionID, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": handler.UnauthorizedMessage})
			c.Abort()
			return
		}

		sessionUserID, err := sessions.Lookup(c.Request.Context(), sessionID)
		if err != nil || sessionUserID != userID {
			c.JSON(http.StatusUnauthorized, gin.H{"error": handler.UnauthorizedMessage})
			c.Abort()
			return
		}

		// store user_id in context so handlers can use it
		c.Set("user_id", userID)
		c.Set("session_id", sessionID)

		c.Next()
	}
}
