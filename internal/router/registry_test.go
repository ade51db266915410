package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyhub/gateway/internal/router/modules"
)

func init() { gin.SetMode(gin.TestMode) }

type pingModule struct{ name string }

func (m pingModule) Name() string { return m.name }

func (m pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/"+m.name, func(c *gin.Context) { c.String(http.StatusOK, c.GetString("tag")) })
}

func newTestRegistry() *Registry {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	reg := NewRegistry(engine, nil)
	reg.Use(func(c *gin.Context) { c.Set("tag", "api"); c.Next() })
	reg.Add(pingModule{"alpha"}, pingModule{"beta"})
	reg.Add(modules.NewDebugModule(reg.Names))
	reg.RegisterAll()
	return reg
}

func get(reg *Registry, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRegistry_MountsUnderAPIWithMiddleware(t *testing.T) {
	reg := newTestRegistry()
	assert.Equal(t, []string{"alpha", "beta", "debug"}, reg.Names())

	w := get(reg, http.MethodGet, "/api/beta")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "api", w.Body.String())

	assert.Equal(t, http.StatusNotFound, get(reg, http.MethodGet, "/beta").Code)
}

func TestRegistry_FallbackEnvelopes(t *testing.T) {
	reg := newTestRegistry()

	w := get(reg, http.MethodGet, "/api/nope")
	require.Equal(t, http.StatusNotFound, w.Code)
	var env struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Error   map[string]string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "route not found", env.Message)
	assert.Equal(t, "/api/nope", env.Error["path"])

	assert.Equal(t, http.StatusMethodNotAllowed, get(reg, http.MethodDelete, "/api/alpha").Code)
}

func TestHealthzListsModules(t *testing.T) {
	reg := newTestRegistry()
	w := get(reg, http.MethodGet, "/api/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data struct {
			Modules []string `json:"modules"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, []string{"alpha", "beta", "debug"}, env.Data.Modules)
}
