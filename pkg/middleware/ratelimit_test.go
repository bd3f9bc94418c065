package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSlidingWindowLimiter_AdmitsUpToLimit(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	l := NewSlidingWindowLimiter(3, time.Minute)
	l.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow("1.2.3.4"), "request %d should be admitted", i+1)
	}
	require.False(t, l.Allow("1.2.3.4"), "request over the limit must be rejected")
	require.Equal(t, 0, l.Remaining("1.2.3.4"))
}

func TestSlidingWindowLimiter_SlidesWithTime(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	l := NewSlidingWindowLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("k"))
	require.True(t, l.Allow("k"))
	require.False(t, l.Allow("k"))

	// Advance past the window; the old timestamps fall out.
	now = now.Add(61 * time.Second)
	require.True(t, l.Allow("k"))
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	l := NewSlidingWindowLimiter(1, time.Minute)

	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	require.True(t, l.Allow("b"), "a second client must not share the first client's window")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := NewSlidingWindowLimiter(2, time.Minute)
	r := gin.New()
	r.Use(RateLimit(l, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	w := do()
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = do()
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = do()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}
