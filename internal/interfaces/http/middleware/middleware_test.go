package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(mw)
	engine.POST("/api/v1/orders/post", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(RequestIDKey)})
	})
	return engine
}

func TestRequestID(t *testing.T) {
	t.Run("a caller-supplied X-Request-ID is kept", func(t *testing.T) {
		engine := newTestEngine(RequestID())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/post", nil)
		req.Header.Set("X-Request-ID", "batch-42")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, "batch-42", rec.Header().Get("X-Request-ID"))
		assert.Contains(t, rec.Body.String(), "batch-42")
	})

	t.Run("a missing request ID is generated and echoed back", func(t *testing.T) {
		engine := newTestEngine(RequestID())

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders/post", nil))

		id := rec.Header().Get("X-Request-ID")
		require.NotEmpty(t, id)
		assert.Contains(t, rec.Body.String(), id)
	})
}

func TestCORS(t *testing.T) {
	t.Run("no origins configured means no CORS headers", func(t *testing.T) {
		engine := newTestEngine(CORS())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/post", nil)
		req.Header.Set("Origin", "https://erp.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("an allowed origin gets the full header set", func(t *testing.T) {
		engine := newTestEngine(CORS("https://erp.example.com"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/post", nil)
		req.Header.Set("Origin", "https://erp.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, "https://erp.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
	})

	t.Run("an unknown origin gets nothing", func(t *testing.T) {
		engine := newTestEngine(CORS("https://erp.example.com"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/post", nil)
		req.Header.Set("Origin", "https://attacker.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered with 204", func(t *testing.T) {
		engine := newTestEngine(CORS("https://erp.example.com"))

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders/post", nil)
		req.Header.Set("Origin", "https://erp.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://erp.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("a wildcard allows any origin without credentials", func(t *testing.T) {
		engine := newTestEngine(CORS("*"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/post", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}
