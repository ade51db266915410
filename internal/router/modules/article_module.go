package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/hobbyhub/gateway/internal/container"
	handlers "github.com/hobbyhub/gateway/internal/interface/http"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
)

// ArticleModule wires article and comment routes. Visitors may read and
// comment; everything else needs a session.
type ArticleModule struct {
	Articles *handlers.ArticleHandler
	Comments *handlers.CommentHandler
}

func NewArticleModule(a *handlers.ArticleHandler, c *handlers.CommentHandler) *ArticleModule {
	return &ArticleModule{Articles: a, Comments: c}
}

func (m *ArticleModule) Name() string { return "articles" }

func (m *ArticleModule) Register(rg *gin.RouterGroup) {
	commentLimiter := middleware.RateLimit(container.GetRedis(), middleware.PerMinute(10), middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	rg.GET("/articles", m.Articles.List)
	rg.GET("/articles/search", m.Articles.Search)
	rg.GET("/articles/categories", m.Articles.Categories)
	rg.GET("/articles/:id", m.Articles.Get)
	rg.GET("/articles/:id/comments", m.Comments.List)
	rg.POST("/articles/:id/comments", commentLimiter, m.Comments.Create)

	auth := rg.Group("/")
	auth.Use(middleware.RequireSession())
	auth.Use(middleware.RateLimit(container.GetRedis(), middleware.PerMinute(30), middleware.KeyByUser(), middleware.AllowSafeMethods()))
	{
		auth.POST("/articles", m.Articles.Create)
		auth.GET("/articles/:id/edit", m.Articles.Edit)
		auth.PUT("/articles/:id", m.Articles.Update)
		auth.DELETE("/articles/:id", m.Articles.Delete)
		auth.DELETE("/articles/:id/comments/:commentId", m.Comments.Delete)
		auth.GET("/me/articles", m.Articles.Mine)
	}
}
