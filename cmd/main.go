package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/config"
	"github.com/hobbyhub/gateway/internal/application"
	"github.com/hobbyhub/gateway/internal/container"
	pginfra "github.com/hobbyhub/gateway/internal/infrastructure/postgres"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
	"github.com/hobbyhub/gateway/internal/router"
	"github.com/hobbyhub/gateway/pkg/helpers"
	"github.com/hobbyhub/gateway/pkg/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("gateway stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	closers, err := connect(ctx, cfg, logger)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	validation.Init()
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newEngine(cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "backend": cfg.BackendBaseURL}).Info("gateway listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("gateway stopped cleanly")
	return nil
}

// connect opens every configured integration and hands it to the container.
// Optional integrations that fail to connect are logged and left nil. The
// returned closers run in reverse order.
func connect(ctx context.Context, cfg *config.Config, logger *logrus.Logger) ([]func(), error) {
	var closers []func()
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetSessions(helpers.NewSessionVerifier(cfg.SessionJWTSecret, cfg.SessionTokenTTL))

	pool, err := pginfra.Open(ctx, cfg)
	if err != nil {
		return closers, fmt.Errorf("postgres: %w", err)
	}
	if pool != nil {
		closers = append(closers, pool.Close)
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			return closers, fmt.Errorf("migrate: %w", err)
		}
		container.SetPGPool(pool)
	} else {
		logger.Info("DB_HOST not set; activity log disabled")
	}

	if rdb := helpers.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger); rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
		container.SetRedis(rdb)
	}

	if cfg.ImageUploader == "gcs" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return closers, fmt.Errorf("gcs: %w", err)
		}
		closers = append(closers, func() { _ = gcs.Close() })
		container.SetGCS(gcs)
	} else if cfg.ImageHostAPIKey == "" {
		logger.Warn("IMAGE_HOST_API_KEY is empty; the image host will reject uploads")
	}

	es, err := helpers.NewESClient(ctx, cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable; search falls back to filtering")
		es = nil
	}
	if err := application.NewArticleSearch(es, cfg.ESArticlesIndex, logger).EnsureIndex(ctx); err != nil {
		logger.WithError(err).Warn("article index setup failed")
	}
	container.SetES(es)

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; notifications disabled")
		} else {
			closers = append(closers, pub.Close)
			container.SetRabbitPub(pub)
		}
	}
	return closers, nil
}

func newEngine(cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    middleware.ExposedHeaders(),
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.Env == "development" || cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r, logger)
	router.InitModules(reg)
	reg.RegisterAll()
	return r
}
