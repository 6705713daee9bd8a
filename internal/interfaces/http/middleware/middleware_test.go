package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/infrastructure/auth"
	"github.com/kesher-io/kesher/internal/infrastructure/ratelimit"
	"github.com/kesher-io/kesher/internal/shared/constants"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"request_id": c.GetString(constants.ContextKeyRequestID),
			"admin":      c.GetString(constants.ContextKeyAdminEmail),
		})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := serve(r, http.MethodGet, "/ping", nil)
	generated := w.Header().Get(constants.HeaderXRequestID)
	assert.Len(t, generated, 36)
	assert.Contains(t, w.Body.String(), generated)

	w = serve(r, http.MethodGet, "/ping", map[string]string{constants.HeaderXRequestID: "req-123"})
	assert.Equal(t, "req-123", w.Header().Get(constants.HeaderXRequestID))
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS([]string{"https://kesher.example"}))

	w := serve(r, http.MethodOptions, "/ping", map[string]string{"Origin": "https://kesher.example"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://kesher.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	open := newEngine(CORS([]string{"*"}))
	w = serve(open, http.MethodGet, "/ping", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	w := serve(newEngine(SecurityHeaders()), http.MethodGet, "/ping", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRequireAuth(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 5)
	token, _, err := jwtSvc.Generate("owner@kesher.example")
	require.NoError(t, err)

	r := newEngine(NewAuthMiddleware(jwtSvc, logger.NewNopLogger()).RequireAuth())

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lower case scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := serve(r, http.MethodGet, "/ping", headers)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), "owner@kesher.example")
			}
		})
	}

	other := auth.NewJWTService("other-secret", 5)
	forged, _, err := other.Generate("owner@kesher.example")
	require.NoError(t, err)
	w := serve(r, http.MethodGet, "/ping", map[string]string{"Authorization": "Bearer " + forged})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter()
	r := newEngine(RateLimit(limiter, "public", ratelimit.Limits{PerMinute: 2}, logger.NewNopLogger()))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/ping", nil).Code)
}

func TestRecoveryAndLogger(t *testing.T) {
	r := newEngine(RequestID(), Logger(logger.NewNopLogger()), Recovery(logger.NewNopLogger()))

	w := serve(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), constants.ErrMsgInternalServerError)
	assert.NotEmpty(t, w.Header().Get(constants.HeaderXRequestID))
}
