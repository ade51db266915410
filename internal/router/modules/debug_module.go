package modules

import (
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hobbyhub/gateway/internal/container"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
	"github.com/hobbyhub/gateway/pkg/response"
)

// DebugModule serves health and expvar. Modules reports what is mounted.
type DebugModule struct {
	Modules func() []string
}

func NewDebugModule(modules func() []string) *DebugModule { return &DebugModule{Modules: modules} }

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) {
		cfg := container.GetConfig()
		response.Success(c, http.StatusOK, gin.H{
			"app":          cfg.AppName,
			"backend":      cfg.BackendBaseURL,
			"uploader":     cfg.ImageUploader,
			"activity_log": container.GetPGPool() != nil,
			"list_cache":   container.GetRedis() != nil,
			"search":       container.GetES() != nil,
			"notify":       container.GetRabbitPub() != nil,
			"modules":      m.mounted(),
		}, "ok", nil)
	})

	// expvar metrics, rate-limited per IP
	rl := middleware.RateLimit(container.GetRedis(), middleware.PerMinute(120), middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}

func (m *DebugModule) mounted() []string {
	if m.Modules == nil {
		return nil
	}
	return m.Modules()
}
