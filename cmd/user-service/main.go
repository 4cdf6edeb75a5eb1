package main

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/corebank/services/internal/user/handler"
	"github.com/corebank/services/internal/user/repository"
	"github.com/corebank/services/internal/user/service"
	"github.com/corebank/services/shared/config"
	"github.com/corebank/services/shared/events"
	"github.com/corebank/services/shared/logger"
	"github.com/corebank/services/shared/middleware"
	sharedredis "github.com/corebank/services/shared/redis"
)

func main() {
	cfg, err := config.Load("user-service")
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log, cfg.App.Name)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET must be set")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	redis, err := sharedredis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	publisher := events.NewPublisher(redis.Client, cfg.Events.PublishTimeout, log)

	repo := repository.NewUserRepository(db)
	userSvc := service.NewUserService(db, repo, publisher, cfg.Auth, log)
	userHandler := handler.NewUserHandler(userSvc)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	userHandler.RegisterRoutes(router, middleware.AuthMiddleware([]byte(cfg.Auth.JWTSecret)))

	log.Info("user service starting", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
