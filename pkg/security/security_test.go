package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSPolicy(t *testing.T) {
	policy := NewCORSPolicy([]string{"http://localhost:3000"})
	r := newEngine(policy.Middleware())

	rec := get(r, "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = get(r, "http://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	policy.SetOrigins([]string{"http://evil.example.com"})
	rec = get(r, "http://evil.example.com")
	assert.Equal(t, "http://evil.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecureHeaders(t *testing.T) {
	rec := get(newEngine(Secure()), "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(3, time.Hour)
	defer limiter.Stop()
	r := newEngine(limiter.Middleware())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(r, "").Code)

	assert.True(t, limiter.Allow("10.0.0.2"), "buckets are per client")

	limiter.Update(5, time.Hour)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(r, "").Code)
}
