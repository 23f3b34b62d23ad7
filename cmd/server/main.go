package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gizmo-edu/survey-service/internal/cache"
	"github.com/gizmo-edu/survey-service/internal/config"
	"github.com/gizmo-edu/survey-service/internal/handlers"
	"github.com/gizmo-edu/survey-service/internal/middleware"
	"github.com/gizmo-edu/survey-service/internal/repositories/postgres"
	"github.com/gizmo-edu/survey-service/internal/services"
	"github.com/gizmo-edu/survey-service/internal/utils"
	"github.com/gizmo-edu/survey-service/internal/validator"
	"github.com/gizmo-edu/survey-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.AutoMigrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process cache", "error", err)
		cacheService = cache.NewMemoryCache()
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogLogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	middleware.InitCasdoor(middleware.CasdoorConfig{
		Endpoint:     cfg.Casdoor.Endpoint,
		ClientID:     cfg.Casdoor.ClientID,
		ClientSecret: cfg.Casdoor.ClientSecret,
		Certificate:  cfg.Casdoor.Certificate,
		Organization: cfg.Casdoor.Organization,
		Application:  cfg.Casdoor.Application,
	})

	repo := postgres.New(db)
	v := validator.New()
	serviceManager := services.NewServiceManager(repo, slogLogger, v, publisher, cacheService)
	handlerManager := handlers.NewHandlerManager(serviceManager, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	handlerManager.SetupRoutes(router, middleware.Auth(logger))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
