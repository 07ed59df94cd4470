package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retrack/internal/session"
	"retrack/internal/util"
)

const testSecret = "test-secret"

func newGatedRouter(t *testing.T) (*gin.Engine, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	sessions := session.NewStore(client)

	r := gin.New()
	authed := r.Group("/")
	authed.Use(AuthMiddleware(testSecret, sessions))
	authed.GET("/whoami", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})
	return r, sessions
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsLiveSession(t *testing.T) {
	r, sessions := newGatedRouter(t)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, "sess-1", 42, time.Hour))
	token, err := util.GenerateJWT(42, "sess-1", testSecret, time.Hour)
	require.NoError(t, err)

	w := get(r, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	r, _ := newGatedRouter(t)

	w := get(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorised access not allowed")
}

func TestAuthMiddlewareRejectsBadSignature(t *testing.T) {
	r, sessions := newGatedRouter(t)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, "sess-1", 42, time.Hour))
	token, err := util.GenerateJWT(42, "sess-1", "wrong-secret", time.Hour)
	require.NoError(t, err)

	w := get(r, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsRevokedSession(t *testing.T) {
	r, sessions := newGatedRouter(t)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, "sess-1", 42, time.Hour))
	token, err := util.GenerateJWT(42, "sess-1", testSecret, time.Hour)
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(ctx, "sess-1"))

	w := get(r, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsSessionUserMismatch(t *testing.T) {
	r, sessions := newGatedRouter(t)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, "sess-1", 99, time.Hour))
	token, err := util.GenerateJWT(42, "sess-1", testSecret, time.Hour)
	require.NoError(t, err)

	w := get(r, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
