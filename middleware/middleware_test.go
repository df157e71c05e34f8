package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartfix/database/repository/memory"
	"smartfix/models"
	"smartfix/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("1.1.1.1"))
	assert.Equal(t, http.StatusOK, hit("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("1.1.1.1"))
	assert.Equal(t, http.StatusOK, hit("2.2.2.2"))
}

func TestClientIP(t *testing.T) {
	testCases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded for", headers: map[string]string{"X-Forwarded-For": " 9.9.9.9 , 8.8.8.8"}, remote: "1.2.3.4:80", want: "9.9.9.9"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "7.7.7.7"}, remote: "1.2.3.4:80", want: "7.7.7.7"},
		{name: "remote addr", remote: "1.2.3.4:5678", want: "1.2.3.4"},
		{name: "remote without port", remote: "1.2.3.4", want: "1.2.3.4"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientIP(c))
		})
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	secret := []byte("s3cret")
	users := memory.NewUserStore()
	require.NoError(t, users.Create(t.Context(), &models.User{ID: "u1", Role: models.RoleProvider, Active: true}))

	r := gin.New()
	r.Use(JWTAuthMiddleware(secret, users, nil, zap.NewNop()))
	r.GET("/me", func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, actor)
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	valid, err := utils.GenerateToken(secret, "u1", time.Hour)
	require.NoError(t, err)
	w := call("Bearer " + valid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","role":"provider","active":true}`, w.Body.String())

	expired, err := utils.GenerateToken(secret, "u1", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+expired).Code)

	forged, err := utils.GenerateToken([]byte("other"), "u1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+forged).Code)

	unknown, err := utils.GenerateToken(secret, "nobody", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+unknown).Code)

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Basic abc").Code)
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		_, ok := c.Get("logger")
		assert.True(t, ok)
		SetActor(c, models.Actor{ID: "u1"})
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
