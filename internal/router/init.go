package router

import (
	"github.com/hobbyhub/gateway/config"
	"github.com/hobbyhub/gateway/internal/application"
	"github.com/hobbyhub/gateway/internal/container"
	"github.com/hobbyhub/gateway/internal/infrastructure/backend"
	"github.com/hobbyhub/gateway/internal/infrastructure/imagehost"
	pginfra "github.com/hobbyhub/gateway/internal/infrastructure/postgres"
	handlers "github.com/hobbyhub/gateway/internal/interface/http"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
	"github.com/hobbyhub/gateway/internal/router/modules"
)

// Services holds the application layer built from the container singletons.
type Services struct {
	Groups    *application.GroupService
	Articles  *application.ArticleService
	Comments  *application.CommentService
	Dashboard *application.DashboardService
	Activity  *application.ActivityRecorder
	Uploader  application.ImageUploader
}

// NewUploader picks the image backend named by IMAGE_UPLOADER.
func NewUploader(cfg *config.Config) application.ImageUploader {
	if cfg.ImageUploader == "gcs" {
		return imagehost.NewGCSUploader(container.GetGCS(), cfg.GCSBucket)
	}
	return imagehost.NewClient(cfg.ImageHostURL, cfg.ImageHostAPIKey, cfg.ImageExpiration, cfg.ImageKeyHelpURL, container.GetLogger())
}

func buildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger)
	cache := backend.NewListCache(container.GetRedis(), cfg.ListCacheTTL, logger)
	groupRepo := backend.NewGroupRepository(client, cache)
	articleRepo := backend.NewArticleRepository(client, cache)
	commentRepo := backend.NewCommentRepository(client)
	statsRepo := backend.NewStatsRepository(client)

	activity := application.NewActivityRecorder(nil, logger)
	if pool := container.GetPGPool(); pool != nil {
		activity.Repo = pginfra.NewActivityRepository(pool)
	}
	notifier := application.NewNotifier(nil, cfg.SiteURL, logger)
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		notifier.Pub = pub
	}
	search := application.NewArticleSearch(container.GetES(), cfg.ESArticlesIndex, logger)
	uploader := NewUploader(cfg)
	guard := application.NewGuard()

	return Services{
		Groups:    application.NewGroupService(groupRepo, uploader, activity, notifier, guard, logger),
		Articles:  application.NewArticleService(articleRepo, uploader, search, activity, guard, logger),
		Comments:  application.NewCommentService(commentRepo, articleRepo, activity, notifier, guard, logger),
		Dashboard: application.NewDashboardService(statsRepo, groupRepo, articleRepo, logger),
		Activity:  activity,
		Uploader:  uploader,
	}
}

// InitModules builds every module from the container and registers it. The
// session middleware runs on all /api routes so public pages can still
// decorate items for a signed-in viewer.
func InitModules(r *Registry) {
	InitModulesWith(r, buildServices())
}

func InitModulesWith(r *Registry, svc Services) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	r.Use(middleware.Session(container.GetSessions()))

	r.Add(modules.NewGroupModule(handlers.NewGroupHandler(svc.Groups, logger, cfg.ImageMaxBytes)))
	r.Add(modules.NewArticleModule(
		handlers.NewArticleHandler(svc.Articles, logger, cfg.ImageMaxBytes),
		handlers.NewCommentHandler(svc.Comments, logger),
	))
	r.Add(modules.NewAccountModule(
		handlers.NewDashboardHandler(svc.Dashboard, svc.Activity, logger),
		handlers.NewUploadHandler(svc.Uploader, logger, cfg.ImageMaxBytes),
	))
	r.Add(modules.NewDebugModule(r.Names))
}
