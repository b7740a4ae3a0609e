package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/universal-yoga/yoga-admin-api/api/swagger"
	"github.com/universal-yoga/yoga-admin-api/internal/handler"
	"github.com/universal-yoga/yoga-admin-api/internal/middleware"
	internalremote "github.com/universal-yoga/yoga-admin-api/internal/remote"
	"github.com/universal-yoga/yoga-admin-api/internal/repository"
	"github.com/universal-yoga/yoga-admin-api/internal/service"
	"github.com/universal-yoga/yoga-admin-api/internal/validation"
	"github.com/universal-yoga/yoga-admin-api/pkg/config"
	"github.com/universal-yoga/yoga-admin-api/pkg/database"
	"github.com/universal-yoga/yoga-admin-api/pkg/logger"
	corsmiddleware "github.com/universal-yoga/yoga-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/universal-yoga/yoga-admin-api/pkg/middleware/requestid"
	"github.com/universal-yoga/yoga-admin-api/pkg/netcheck"
	"github.com/universal-yoga/yoga-admin-api/pkg/remote"
)

// @title Universal Yoga Admin API
// @version 1.0.0
// @description Studio admin service for class definitions, scheduled occurrences and bulk cloud sync
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repository.EnsureSchema(ctx, db); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}
	cancel()

	// The remote store is optional at boot. A nil client leaves the
	// writer not ready and sync runs report the init failure instead.
	redisClient, err := remote.NewRedis(cfg.Remote)
	if err != nil {
		logr.Sugar().Warnw("remote store unavailable", "error", err)
	}
	writer := internalremote.NewRedisWriter(redisClient, cfg.Remote.RootKey)

	checker := netcheck.New(cfg.Net.ProbeTarget, cfg.Net.ProbeTimeout)
	validate := validation.NewValidator()
	metricsSvc := service.NewMetricsService()

	classRepo := repository.NewClassRepository(db)
	occurrenceRepo := repository.NewOccurrenceRepository(db)

	classSvc := service.NewClassService(classRepo, validate, logr)
	occurrenceSvc := service.NewOccurrenceService(occurrenceRepo, classRepo, validate, logr)
	authSvc := service.NewAuthService(service.AuthConfig{
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		Secret:            cfg.Auth.JWTSecret,
		Expiration:        cfg.Auth.TokenExpiration,
	}, validate, logr)
	uploadSvc := service.NewUploadService(writer, checker, metricsSvc, logr)
	exportSvc := service.NewExportService(classRepo, occurrenceRepo, cfg.Export.Title, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	classHandler := handler.NewClassHandler(classSvc)
	occurrenceHandler := handler.NewOccurrenceHandler(occurrenceSvc)
	syncHandler := handler.NewSyncHandler(uploadSvc, classRepo, occurrenceRepo, checker, 0)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/classes", classHandler.List)
		authed.POST("/classes", classHandler.Create)
		authed.GET("/classes/search", classHandler.Search)
		authed.POST("/classes/reset", classHandler.Reset)
		authed.GET("/classes/:id", classHandler.Get)
		authed.DELETE("/classes/:id", classHandler.Delete)

		authed.GET("/classes/:id/occurrences", occurrenceHandler.ListByClass)
		authed.POST("/classes/:id/occurrences", occurrenceHandler.Create)
		authed.DELETE("/classes/:id/occurrences", occurrenceHandler.DeleteByClass)
		authed.GET("/occurrences/:id", occurrenceHandler.Get)
		authed.PUT("/occurrences/:id", occurrenceHandler.Update)
		authed.DELETE("/occurrences/:id", occurrenceHandler.Delete)

		authed.POST("/sync/upload", syncHandler.Upload)
		authed.GET("/sync/status", syncHandler.Status)

		authed.GET("/exports/classes.csv", exportHandler.CSV)
		authed.GET("/exports/classes.pdf", exportHandler.PDF)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
