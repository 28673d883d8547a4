package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(l *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.POST("/confirm", l.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func post(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/confirm", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(3))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "10.0.0.1").Code)
	}
	w := post(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")

	assert.Equal(t, http.StatusOK, post(r, "10.0.0.2").Code, "limits are per client IP")
}

func TestRateLimiter_Prune(t *testing.T) {
	l := NewRateLimiter(5)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.getLimiter("10.0.0.1")
	now = now.Add(20 * time.Minute)
	l.getLimiter("10.0.0.2")

	assert.Equal(t, 1, l.Prune(10*time.Minute))
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "10.0.0.2")
	assert.Zero(t, l.Prune(10*time.Minute))
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())

	var sawLogger bool
	r.GET("/ping", func(c *gin.Context) {
		sawLogger = log.Ctx(c.Request.Context()).GetLevel() != zerolog.Disabled
		c.Status(http.StatusNoContent)
	})

	t.Run("Generates ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		_, err := uuid.Parse(w.Header().Get(requestIDHeader))
		require.NoError(t, err)
		assert.True(t, sawLogger)
	})

	t.Run("Keeps Valid Incoming ID", func(t *testing.T) {
		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(requestIDHeader, id)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, id, w.Header().Get(requestIDHeader))
	})

	t.Run("Replaces Garbage ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(requestIDHeader, "<script>")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.NotEqual(t, "<script>", w.Header().Get(requestIDHeader))
	})
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8081"}, allowedOrigins(false, "https://ignored.example"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, allowedOrigins(true, " https://a.example, ,https://b.example "))
	assert.Empty(t, allowedOrigins(true, ""))
}
