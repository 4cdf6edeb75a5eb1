package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/corebank/services/internal/account/admission"
	"github.com/corebank/services/internal/account/client"
	"github.com/corebank/services/internal/account/handler"
	"github.com/corebank/services/internal/account/listener"
	"github.com/corebank/services/internal/account/repository"
	"github.com/corebank/services/internal/account/service"
	"github.com/corebank/services/shared/config"
	"github.com/corebank/services/shared/events"
	"github.com/corebank/services/shared/logger"
	"github.com/corebank/services/shared/middleware"
	sharedredis "github.com/corebank/services/shared/redis"
)

func main() {
	cfg, err := config.Load("account-service")
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

	repo := repository.NewAccountRepository(db)
	lookup := client.NewCustomerClient(cfg.Clients.CustomerServiceURL, cfg.Clients.LookupTimeout)
	pipeline := admission.NewPipeline(lookup, repo,
		int64(cfg.Account.MaxAccountsPerCustomer), cfg.Account.MinInvestmentBalance)

	accountSvc := service.NewAccountService(db, repo, pipeline, publisher, log)
	accountHandler := handler.NewAccountHandler(accountSvc)
	customerListener := listener.NewCustomerEventListener(accountSvc, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	accountHandler.RegisterRoutes(router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:         "account-service-group",
			Consumer:      "account-consumer-1",
			Stream:        events.CustomerEventsStream,
			Handler:       customerListener.Handle,
			BatchSize:     cfg.Events.BatchSize,
			BlockDuration: cfg.Events.BlockDuration,
		}, log)
		if err := subscriber.Start(ctx); err != nil {
			log.Info("subscriber stopped", zap.Error(err))
		}
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	log.Info("account service starting", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
