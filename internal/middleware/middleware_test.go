package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Orion_Tube/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// 回显当前用户ID，0表示游客
func echoUser(c *gin.Context) {
	id, _ := CurrentUserID(c)
	c.JSON(http.StatusOK, gin.H{"user_id": id})
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := jwt.NewService("secret", time.Hour)
	token, err := tokens.GenerateToken(7, "alice")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", AuthMiddleware(tokens), echoUser)

	w := serve(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer nope").Code)

	other := jwt.NewService("other-secret", time.Hour)
	forged, err := other.GenerateToken(7, "alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer "+forged).Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	tokens := jwt.NewService("secret", time.Hour)
	token, err := tokens.GenerateToken(9, "bob")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", OptionalAuthMiddleware(tokens), echoUser)

	assert.JSONEq(t, `{"user_id":9}`, serve(r, "Bearer "+token).Body.String())
	assert.JSONEq(t, `{"user_id":0}`, serve(r, "").Body.String())
	// 无效令牌按游客处理
	w := serve(r, "Bearer broken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, 1, time.Minute), echoUser)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, "").Code)
	}
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	r := gin.New()
	r.GET("/", RateLimit(rdb, 1, time.Minute), echoUser)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
}

func TestRateLimit_OverLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	r := gin.New()
	r.Use(RateLimit(rdb, 2, time.Hour))
	r.GET("/", echoUser)

	for _, remaining := range []string{"1", "0"} {
		w := serve(r, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, remaining, w.Header().Get("X-RateLimit-Remaining"))
	}

	w := serve(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "请求过于频繁")

	// 计数key带过期时间
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}
