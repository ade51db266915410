package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/hobbyhub/gateway/internal/container"
	handlers "github.com/hobbyhub/gateway/internal/interface/http"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
)

// GroupModule wires group routes.
// Public: GET /groups, GET /groups/:id
// Protected: POST /groups, GET /groups/:id/edit, PUT /groups/:id, DELETE /groups/:id,
// POST /groups/:id/join, DELETE /groups/:id/leave, GET /me/groups, GET /me/joined
type GroupModule struct {
	Handler *handlers.GroupHandler
}

func NewGroupModule(h *handlers.GroupHandler) *GroupModule {
	return &GroupModule{Handler: h}
}

func (m *GroupModule) Name() string { return "groups" }

func (m *GroupModule) Register(rg *gin.RouterGroup) {
	rg.GET("/groups", m.Handler.List)
	rg.GET("/groups/:id", m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.RequireSession())
	auth.Use(middleware.RateLimit(container.GetRedis(), middleware.PerMinute(30), middleware.KeyByUser(), middleware.AllowSafeMethods()))
	{
		auth.POST("/groups", m.Handler.Create)
		auth.GET("/groups/:id/edit", m.Handler.Edit)
		auth.PUT("/groups/:id", m.Handler.Update)
		auth.DELETE("/groups/:id", m.Handler.Delete)
		auth.POST("/groups/:id/join", m.Handler.Join)
		auth.DELETE("/groups/:id/leave", m.Handler.Leave)
		auth.GET("/me/groups", m.Handler.Mine)
		auth.GET("/me/joined", m.Handler.Joined)
	}
}
