package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coolie/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"session": c.GetString(utils.ContextSessionID),
			"user":    c.GetString(utils.ContextUserID),
		})
	})
	return r
}

func TestSessionMiddlewareMintsAndEchoes(t *testing.T) {
	r := newRouter(SessionMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	minted := w.Header().Get(utils.SessionHeader)
	_, err := uuid.Parse(minted)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(utils.SessionHeader, minted)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, minted, w.Header().Get(utils.SessionHeader))
	assert.Contains(t, w.Body.String(), minted)
}

func TestSessionMiddlewareReplacesGarbage(t *testing.T) {
	r := newRouter(SessionMiddleware())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(utils.SessionHeader, "not-a-uuid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(utils.SessionHeader))
}

func TestJWTAuthUserMiddleware(t *testing.T) {
	r := newRouter(JWTAuthUserMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := utils.GenerateToken("user-42", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
}

func TestRateLimitPerIP(t *testing.T) {
	r := newRouter(NewRateLimiter(2).Middleware())
	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do("1.1.1.1"))
	assert.Equal(t, http.StatusOK, do("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("1.1.1.1"))
	assert.Equal(t, http.StatusOK, do("2.2.2.2"))
}

func TestRateLimiterSweepForgetsIdleIPs(t *testing.T) {
	l := NewRateLimiter(2)
	now := time.Now()
	l.now = func() time.Time { return now }
	r := newRouter(l.Middleware())
	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	do("1.1.1.1")
	now = now.Add(time.Hour)
	do("2.2.2.2")
	require.Equal(t, 2, l.Len())

	assert.Equal(t, 1, l.Sweep(30*time.Minute))
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 0, l.Sweep(30*time.Minute))

	// A forgotten IP starts again with a full bucket.
	assert.Equal(t, http.StatusOK, do("1.1.1.1"))
	assert.Equal(t, http.StatusOK, do("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("1.1.1.1"))
}
