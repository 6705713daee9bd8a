package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/infrastructure/config"
	"github.com/kesher-io/kesher/internal/infrastructure/migration"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/testutil"
	sharedConfig "github.com/kesher-io/kesher/internal/shared/config"
)

const (
	testAdminEmail    = "owner@kesher.test"
	testAdminPassword = "s3cret-pass"
)

func setupTestRouter(t *testing.T) *Router {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(migration.AutoMigrateModels()...))

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{
			BaseURL:        "https://kesher.test",
			AllowedOrigins: []string{"https://kesher.test"},
		},
		Auth: sharedConfig.AuthConfig{
			JWT:   sharedConfig.JWTConfig{Secret: "test-secret", AccessExpMinutes: 60},
			Admin: sharedConfig.AdminConfig{Email: testAdminEmail, PasswordHash: string(hash)},
		},
		Email: sharedConfig.EmailConfig{FromName: "Kesher", FromAddress: "hello@kesher.test"},
		Payment: sharedConfig.PaymentConfig{
			DefaultGateway: "manual",
			Currency:       "ILS",
			VATPercent:     "18",
		},
	}

	r, err := NewRouter(db, cfg, testutil.NewMockLogger())
	require.NoError(t, err)
	r.SetupRoutes()
	t.Cleanup(r.Shutdown)
	return r
}

func doRequest(r *Router, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *Router) string {
	w := doRequest(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		AccessToken string `json:"access_token"`
	}
	_, err := testutil.DecodeData(w, &result)
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	return result.AccessToken
}

func TestRouter_Health(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_SwaggerDoc(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/swagger/doc.json", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths, "/admin/payments/{id}/refund")
	assert.Contains(t, doc.Paths, "/admin/recurring-payments/{id}/resume")
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/admin/contacts", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/api/admin/contacts", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_LoginRejectsWrongPassword(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    testAdminEmail,
		"password": "wrong",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AdminFlow(t *testing.T) {
	r := setupTestRouter(t)
	token := login(t, r)

	w := doRequest(r, http.MethodGet, "/api/admin/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testAdminEmail)

	w = doRequest(r, http.MethodPost, "/api/admin/contacts", map[string]any{
		"first_name": "Noa",
		"last_name":  "Cohen",
		"email":      "noa@example.com",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/admin/contacts", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list testutil.ListData
	_, err := testutil.DecodeData(w, &list)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
}

func TestRouter_PublicLeadCapture(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/public/leads", map[string]any{
		"first_name": "Yael",
		"email":      "yael@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(r, http.MethodPost, "/api/public/leads", map[string]any{
		"first_name": "Yael",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = doRequest(r, http.MethodGet, "/missing-page", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestRouter_MarketingPages(t *testing.T) {
	r := setupTestRouter(t)

	for _, path := range []string{"/", "/about", "/courses"} {
		w := doRequest(r, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html", path)
	}

	w := doRequest(r, http.MethodGet, "/courses/unknown-course", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_WebhookUnknownGateway(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/webhooks/payments/nosuch", map[string]string{"x": "y"}, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
