package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/pkg/helpers"
	"github.com/hobbyhub/gateway/pkg/response"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSession(t *testing.T) {
	v := helpers.NewSessionVerifier("s3cret", time.Hour)
	var seen *entity.User
	r := gin.New()
	r.Use(Session(v))
	r.GET("/whoami", func(c *gin.Context) {
		seen = CurrentUser(c)
		c.Status(http.StatusNoContent)
	})
	r.GET("/private", RequireSession(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tok, _, err := v.Sign("uid-1", "rina@example.com", "Rina", "https://img.example.com/r.png")
	require.NoError(t, err)

	t.Run("anonymous passes", func(t *testing.T) {
		seen = &entity.User{}
		w := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Nil(t, seen)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := serve(r, req)
		require.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "uid-1", seen.UID)
		assert.Equal(t, "rina@example.com", seen.Email)
		assert.Equal(t, "Rina", seen.Name())
		replay, err := seen.Tokens.IDToken(req.Context())
		require.NoError(t, err)
		assert.Equal(t, tok, replay)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
		assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("private without session", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/private", nil)).Code)
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(response.RequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, incoming)
	assert.Equal(t, incoming, serve(r, req).Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	assert.NotEqual(t, "<script>", serve(r, req).Header().Get(HeaderRequestID))
}

func TestRealIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Real-IP": "198.51.100.1"}, "203.0.113.7"},
		{"x-real-ip", map[string]string{"X-Real-IP": "198.51.100.1"}, "198.51.100.1"},
		{"left-most forwarded", map[string]string{"X-Forwarded-For": "192.0.2.9, 10.0.0.1"}, "192.0.2.9"},
		{"invalid header ignored", map[string]string{"X-Real-IP": "nope", "X-Forwarded-For": "192.0.2.10"}, "192.0.2.10"},
		{"port stripped", map[string]string{"X-Real-IP": "198.51.100.1:5443"}, "198.51.100.1"},
		{"rfc 7239", map[string]string{"Forwarded": `for="[2001:db8::17]:4711";proto=https, for=192.0.2.60`}, "2001:db8::17"},
		{"forwarded before x-forwarded-for", map[string]string{"Forwarded": "For=192.0.2.43", "X-Forwarded-For": "192.0.2.9"}, "192.0.2.43"},
		{"fallback to remote addr", map[string]string{"X-Forwarded-For": "unknown"}, "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RealIP())
			r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, ipFromCtx(c)) })
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, serve(r, req).Body.String())
		})
	}
}

func TestKeysAndBypass(t *testing.T) {
	newCtx := func(method, ip, email string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(method, "/articles/a1/comments", nil)
		c.Set(CtxRealIPKey, ip)
		if email != "" {
			c.Set(CtxUserEmailKey, email)
		}
		return c
	}

	assert.Equal(t, "rl:user:rina@example.com", KeyByUser()(newCtx(http.MethodPost, "1.2.3.4", "Rina@Example.com")))
	assert.Equal(t, "rl:user:anon:ip:1.2.3.4", KeyByUser()(newCtx(http.MethodPost, "1.2.3.4", "")))
	assert.Equal(t, "rl:path:/articles/a1/comments:ip:1.2.3.4", KeyByIPAndPath()(newCtx(http.MethodPost, "1.2.3.4", "")))

	assert.True(t, AllowPrivateIP()(newCtx(http.MethodPost, "10.1.2.3", "")))
	assert.True(t, AllowPrivateIP()(newCtx(http.MethodPost, "127.0.0.1", "")))
	assert.False(t, AllowPrivateIP()(newCtx(http.MethodPost, "8.8.8.8", "")))

	assert.True(t, AllowSafeMethods()(newCtx(http.MethodGet, "8.8.8.8", "")))
	assert.False(t, AllowSafeMethods()(newCtx(http.MethodDelete, "8.8.8.8", "")))

	either := AnyOf(nil, AllowSafeMethods(), AllowPrivateIP())
	assert.True(t, either(newCtx(http.MethodPost, "192.168.1.5", "")))
	assert.False(t, either(newCtx(http.MethodPost, "8.8.8.8", "")))
}

func TestRateLimit_DisabledWithoutRedis(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, PerMinute(1), KeyByIPAndPath(), nil))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestLimit_Bucket(t *testing.T) {
	l := Limit{Max: 5, Window: time.Minute}
	start := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

	idx, closes := l.bucket(start.Add(10 * time.Second))
	assert.Equal(t, start.Add(time.Minute), closes.UTC())

	next, _ := l.bucket(start.Add(time.Minute))
	same, _ := l.bucket(start.Add(59 * time.Second))
	assert.Equal(t, idx+1, next)
	assert.Equal(t, idx, same)

	assert.False(t, Limit{}.enabled())
	assert.True(t, PerMinute(3).enabled())
}

func TestExposedHeaders_ReadableCrossOrigin(t *testing.T) {
	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173"},
		AllowMethods:  []string{"GET", "POST"},
		ExposeHeaders: ExposedHeaders(),
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	exposed := serve(r, req).Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{HeaderRateLimitLimit, HeaderRateLimitRemaining, HeaderRateLimitReset, HeaderRetryAfter, HeaderRequestID} {
		assert.Contains(t, strings.ToLower(exposed), strings.ToLower(h))
	}
}
