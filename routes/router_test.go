package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"spareshop-api/config"
	"spareshop-api/controllers"
	"spareshop-api/middlewares"
	"spareshop-api/models"
	"spareshop-api/services"
	"spareshop-api/utils/token"
	"spareshop-api/utils/upload"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	images, err := upload.NewImageStore(t.TempDir(), 5)
	require.NoError(t, err)
	tokens := token.NewManager("access-secret", "refresh-secret", 30*time.Minute, 24*time.Hour)

	r := gin.New()
	r.Use(middlewares.Environment(true), middlewares.Recovery(zap.NewNop()))
	RegisterRoutes(r, Handlers{
		Auth:        controllers.NewAuthController(services.NewAuthService(db, tokens), 24*time.Hour, false),
		Spareparts:  controllers.NewSparepartController(services.NewSparepartService(db, images), images),
		Orders:      controllers.NewOrderController(services.NewOrderService(db)),
		Purchases:   controllers.NewPurchaseController(services.NewPurchaseService(db)),
		Dashboard:   controllers.NewDashboardController(services.NewDashboardService(db), services.NewUserService(db)),
		Tokens:      tokens,
		AuthLimiter: middlewares.NewRateLimiter(1000, 1000),
		UploadDir:   images.Dir,
	})
	return &testServer{router: r, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body any, accessToken string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createAdmin(t *testing.T) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&models.User{Email: "admin@example.com", Username: "admin", Password: string(hash), Role: models.RoleAdmin}).Error)
}

type loginResult struct {
	AccessToken string
	UserID      uint
	Cookie      *http.Cookie
}

func (s *testServer) login(t *testing.T, email, password string) loginResult {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		AccessToken string      `json:"accessToken"`
		User        models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	var refresh *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == controllers.RefreshCookieName {
			refresh = ck
		}
	}
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)
	assert.NotContains(t, w.Body.String(), refresh.Value, "refresh token only travels in the cookie")

	return loginResult{AccessToken: body.AccessToken, UserID: body.User.ID, Cookie: refresh}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createSparepart(t *testing.T, s *testServer, accessToken, name string, stock, price int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", name))
	require.NoError(t, mw.WriteField("stock", fmt.Sprint(stock)))
	require.NoError(t, mw.WriteField("price", fmt.Sprint(price)))
	fw, err := mw.CreateFormFile("image", "part.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/spareparts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", nil, "").Code)

	w := s.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestShoppingFlow(t *testing.T) {
	s := newTestServer(t)
	s.createAdmin(t)

	w := s.do(t, http.MethodPost, "/api/register", map[string]string{
		"email": "budi@example.com", "username": "budi", "password": "rahasia123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "rahasia123")
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodPost, "/api/register", map[string]string{
		"email": "budi@example.com", "username": "budi2", "password": "rahasia123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	admin := s.login(t, "admin@example.com", "admin12345")
	customer := s.login(t, "budi@example.com", "rahasia123")

	assert.Equal(t, http.StatusForbidden, createSparepart(t, s, customer.AccessToken, "Oil", 10, 5000).Code)

	w = createSparepart(t, s, admin.AccessToken, "Oil", 10, 5000)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	partID := uint(decode(t, w)["data"].(map[string]any)["id"].(float64))

	w = s.do(t, http.MethodGet, "/api/spareparts?q=oil", nil, customer.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(t, http.MethodPost, "/api/cart", map[string]any{"id_sparepart": partID, "jumlah": 4}, customer.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/cart", map[string]any{"id_sparepart": partID, "jumlah": 3}, customer.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := uint(decode(t, w)["data"].(map[string]any)["id"].(float64))

	w = s.do(t, http.MethodPost, "/api/cart", map[string]any{"id_sparepart": partID, "jumlah": 4}, customer.AccessToken)
	assert.Equal(t, http.StatusBadRequest, w.Code, "merged quantity exceeds stock")

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/cart/%d", customer.UserID), nil, customer.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/cart/%d", customer.UserID+100), nil, customer.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/cart/checkout", nil, customer.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/cart/checkout", nil, customer.AccessToken)
	assert.Equal(t, http.StatusBadRequest, w.Code, "cart is empty now")

	var part models.Sparepart
	require.NoError(t, s.db.First(&part, partID).Error)
	assert.Equal(t, 3, part.Stock)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/pay", itemID), nil, customer.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/cancel", itemID), nil, customer.AccessToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Error", decode(t, w)["status"])

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d?status=paid", customer.UserID), nil, customer.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d?status=cancelled", customer.UserID), nil, customer.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"])

	w = s.do(t, http.MethodGet, "/api/dashboard", nil, customer.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodGet, "/api/dashboard", nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7*5000), decode(t, w)["today_revenue"])
}

func TestTokenRefreshAndLogout(t *testing.T) {
	s := newTestServer(t)
	s.createAdmin(t)
	admin := s.login(t, "admin@example.com", "admin12345")

	w := s.do(t, http.MethodGet, "/api/token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/token", nil, "", admin.Cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["accessToken"])

	tampered := *admin.Cookie
	tampered.Value = tampered.Value[:len(tampered.Value)-10] + strings.Repeat("A", 10)
	w = s.do(t, http.MethodGet, "/api/token", nil, "", &tampered)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "accessToken")

	w = s.do(t, http.MethodGet, "/api/logout", nil, "", admin.Cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == controllers.RefreshCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)

	w = s.do(t, http.MethodGet, "/api/token", nil, "", admin.Cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/logout", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, "logout without a cookie is a no-op")
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t)
	s.createAdmin(t)

	w := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "admin@example.com", "password": "nope-nope"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, "invalid credentials", decode(t, w)["message"])

	var admin models.User
	require.NoError(t, s.db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Nil(t, admin.RefreshToken)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/spareparts", "/api/cart/1", "/api/orders/1", "/api/pembelian/1", "/api/users"} {
		w := s.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
