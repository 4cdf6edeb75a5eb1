package main

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/corebank/services/internal/customer/handler"
	"github.com/corebank/services/internal/customer/repository"
	"github.com/corebank/services/internal/customer/service"
	"github.com/corebank/services/shared/config"
	"github.com/corebank/services/shared/events"
	"github.com/corebank/services/shared/logger"
	"github.com/corebank/services/shared/middleware"
	"github.com/corebank/services/shared/models"
	sharedredis "github.com/corebank/services/shared/redis"
)

func main() {
	cfg, err := config.Load("customer-service")
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log, cfg.App.Name)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

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
	cache := sharedredis.NewViewCache[models.Customer](redis.Client, cfg.Redis.CacheTTL, log)

	repo := repository.NewCustomerRepository(db)
	customerSvc := service.NewCustomerService(db, repo, publisher, cache, log)
	customerHandler := handler.NewCustomerHandler(customerSvc)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	customerHandler.RegisterRoutes(router)

	log.Info("customer service starting", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
