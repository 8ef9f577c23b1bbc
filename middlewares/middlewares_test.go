package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spareshop-api/models"
	"spareshop-api/utils/common"
	"spareshop-api/utils/response"
	"spareshop-api/utils/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *token.Manager {
	return token.NewManager("access-secret", "refresh-secret", 30*time.Minute, 24*time.Hour)
}

func protectedRouter(tokens *token.Manager, roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(tokens)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		actor, _ := common.GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role})
	})
	r.GET("/private", handlers...)
	return r
}

func get(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	r := protectedRouter(tokens)

	access, err := tokens.GenerateAccessToken(3, "a@example.com", "a", models.RoleCustomer)
	require.NoError(t, err)
	refresh, err := tokens.GenerateRefreshToken(3)
	require.NoError(t, err)

	w := get(r, "/private", "Bearer "+access)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["user_id"])
	assert.Equal(t, models.RoleCustomer, body["role"])

	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "Token "+access).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/private", "Bearer not-a-jwt").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/private", "Bearer "+refresh).Code, "refresh token is not an access token")
}

func TestRoleMiddleware(t *testing.T) {
	tokens := newTokens()
	r := protectedRouter(tokens, models.RoleAdmin)

	customer, err := tokens.GenerateAccessToken(3, "a@example.com", "a", models.RoleCustomer)
	require.NoError(t, err)
	admin, err := tokens.GenerateAccessToken(1, "admin@example.com", "admin", models.RoleAdmin)
	require.NoError(t, err)

	w := get(r, "/private", "Bearer "+customer)
	assert.Equal(t, http.StatusForbidden, w.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Error", env.Status)
	assert.Equal(t, "access denied", env.Message)

	assert.Equal(t, http.StatusOK, get(r, "/private", "Bearer "+admin).Code)
}

func TestRecoveryHidesPanicsInProduction(t *testing.T) {
	r := gin.New()
	r.Use(Environment(true), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("db exploded") })

	w := get(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db exploded")
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/login", "").Code)
}

func TestMetricsAndLoggerPassThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/items/9", "").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/missing", "").Code)
}
