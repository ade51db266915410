package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/hobbyhub/gateway/internal/container"
	handlers "github.com/hobbyhub/gateway/internal/interface/http"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
)

// AccountModule wires stats, the personal dashboard and standalone image uploads.
type AccountModule struct {
	Dashboard *handlers.DashboardHandler
	Uploads   *handlers.UploadHandler
}

func NewAccountModule(d *handlers.DashboardHandler, u *handlers.UploadHandler) *AccountModule {
	return &AccountModule{Dashboard: d, Uploads: u}
}

func (m *AccountModule) Name() string { return "account" }

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rg.GET("/stats", m.Dashboard.Stats)

	auth := rg.Group("/")
	auth.Use(middleware.RequireSession())
	{
		auth.GET("/me/dashboard", m.Dashboard.Mine)
		auth.GET("/me/activity", m.Dashboard.RecentActivity)
		auth.POST("/uploads/image",
			middleware.RateLimit(container.GetRedis(), middleware.PerMinute(20), middleware.KeyByUser(), nil),
			m.Uploads.Image)
	}
}
