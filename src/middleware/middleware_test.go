package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"memo-notion-api/src/logger"
	"memo-notion-api/src/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)

	// テストではファイル出力を行わない
	logger.Log = logrus.New()
	logger.Log.SetOutput(io.Discard)
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func get(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("Authorizationヘッダーが無い場合は401", func(t *testing.T) {
		r := newRouter(middleware.AuthMiddleware("secret"))

		w := get(r, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Bearer形式でない場合は401", func(t *testing.T) {
		r := newRouter(middleware.AuthMiddleware("secret"))

		w := get(r, map[string]string{"Authorization": "Basic abc"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("トークンが一致しない場合は401", func(t *testing.T) {
		r := newRouter(middleware.AuthMiddleware("secret"))

		w := get(r, map[string]string{"Authorization": "Bearer wrong"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("正しいトークンは通過する", func(t *testing.T) {
		r := newRouter(middleware.AuthMiddleware("secret"))

		w := get(r, map[string]string{"Authorization": "Bearer secret"})

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	// 60リクエスト/分 → バースト6。7回目の連続リクエストで上限に達する
	r := newRouter(middleware.RateLimitMiddleware(60))

	for i := 0; i < 6; i++ {
		w := get(r, nil)
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := get(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("CORSヘッダーを付与する", func(t *testing.T) {
		r := newRouter(middleware.CORSMiddleware())

		w := get(r, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("プリフライトリクエストは204で終了する", func(t *testing.T) {
		r := newRouter(middleware.CORSMiddleware())
		r.OPTIONS("/ping", func(c *gin.Context) {})

		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestLoggerMiddleware(t *testing.T) {
	r := newRouter(middleware.LoggerMiddleware())

	w := get(r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
