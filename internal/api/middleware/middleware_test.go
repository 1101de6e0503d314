package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/pkg/auth"
)

func newEngine(tokens *auth.Manager, limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(tokens))
	if limiter != nil {
		r.Use(limiter.Middleware())
	}
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c)) })
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	tokens := auth.NewManager("s", "tieba", time.Hour)
	r := newEngine(tokens, nil)

	token, err := tokens.Generate("u-1", "alice")
	require.NoError(t, err)

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer garbage").Code)

	other := auth.NewManager("other", "tieba", time.Hour)
	forged, err := other.Generate("u-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+forged).Code)
}

func TestRateLimiterPerUser(t *testing.T) {
	tokens := auth.NewManager("s", "tieba", time.Hour)
	r := newEngine(tokens, NewRateLimiter(0.001, 2))

	a, _ := tokens.Generate("a", "a")
	b, _ := tokens.Generate("b", "b")

	assert.Equal(t, http.StatusOK, get(r, "Bearer "+a).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+a).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "Bearer "+a).Code)
	// 其他用户不受影响
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+b).Code)
}

func TestAdminOnly(t *testing.T) {
	tokens := auth.NewManager("s", "tieba", time.Hour)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(tokens), AdminOnly([]string{"root", ""}))
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c)) })

	root, _ := tokens.Generate("root", "root")
	plain, _ := tokens.Generate("u-1", "alice")

	w := get(r, "Bearer "+root)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root", w.Body.String())
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+plain).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)

	// 空白名单拒绝所有人
	closed := gin.New()
	closed.Use(JWTAuth(tokens), AdminOnly(nil))
	closed.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, "x") })
	assert.Equal(t, http.StatusForbidden, get(closed, "Bearer "+root).Code)
}
