package main

import (
	"context"
	"log"
	"time"

	"service-dispatch/cmd"
	"service-dispatch/internal/data/repository"
	"service-dispatch/internal/usecase"
	"service-dispatch/internal/wire"
	"service-dispatch/pkg/cache"
	"service-dispatch/pkg/database"
	"service-dispatch/pkg/mq"
	"service-dispatch/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Connect to redis (vendor presence + webhook dedup fast path)
	presenceTTL := time.Duration(config.Dispatch.PresenceTTLSeconds) * time.Second
	redisCache, err := cache.NewCache(config.Redis, presenceTTL)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisCache.Close()

	logger.Info("Redis connected successfully")

	// Connect to the notification queue
	publisher, err := mq.NewPublisher(config.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer publisher.Close()

	logger.Info("Message queue connected successfully")

	// Initialize all repositories and services
	repos := repository.NewRepository(db, logger)
	notifier := usecase.NewQueueNotifier(publisher)
	service := usecase.NewService(db, repos, config, redisCache, notifier, logger)

	// Background expiry sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go service.Sweeper.Run(sweepCtx)

	// Wire all dependencies
	app := wire.Wiring(service, repos, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port, logger)
}
