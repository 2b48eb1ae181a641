package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rocketshoes-cart/configs"
	"rocketshoes-cart/internal/handlers"
	"rocketshoes-cart/internal/middleware"
	"rocketshoes-cart/internal/models"
	"rocketshoes-cart/internal/repositories"
	"rocketshoes-cart/internal/services"
	"rocketshoes-cart/pkg/api"
	"rocketshoes-cart/pkg/auth"
	"rocketshoes-cart/pkg/cache"
	"rocketshoes-cart/pkg/database"
	"rocketshoes-cart/pkg/logger"
	"rocketshoes-cart/pkg/messaging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	config := configs.LoadConfig()
	log := logger.New(config.Log.Level)

	// Set Gin mode
	gin.SetMode(config.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize cart storage
	store, closeStore, err := openStore(ctx, config, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open cart storage")
	}
	defer closeStore()

	// Storefront API serves both stock and product lookups
	storefront := api.NewClient(config.API.BaseURL, config.API.Timeout)

	// Notifications always go to the log, and to Kafka when enabled
	notifier := services.MultiNotifier{services.NewLogNotifier(log)}
	if config.Kafka.Enabled {
		kafkaProducer := messaging.NewKafkaProducer(config.Kafka.Brokers)
		defer kafkaProducer.Close()
		notifier = append(notifier, services.NewKafkaNotifier(kafkaProducer, config.Kafka.NotificationTopic, log))
	}

	jwtManager := auth.NewJWTManager(config.JWT.SecretKey, config.JWT.ExpiryHours)

	// Initialize services
	sessionService := services.NewSessionService(
		jwtManager,
		store,
		config.Storage.Key,
		storefront,
		storefront,
		notifier,
		log,
	).ConfigureCache(config.Session.MaxCachedCarts, config.Session.CartIdleTTL)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService)
	cartHandler := handlers.NewCartHandler(sessionService)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware(config.Server.AllowOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "rocketshoes-cart",
			"storage": config.Storage.Driver,
		})
	})

	// API routes
	v1 := router.Group("/api/v1")
	sessionHandler.RegisterRoutes(v1)
	cartHandler.RegisterRoutes(v1, authMiddleware)

	server := &http.Server{
		Addr:    ":" + config.Server.Port,
		Handler: router,
	}

	go func() {
		log.WithField("port", config.Server.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// openStore connects the configured storage driver and returns it with its
// cleanup function.
func openStore(ctx context.Context, config *configs.Config, log logrus.FieldLogger) (repositories.KeyValueStore, func(), error) {
	log = log.WithField("driver", config.Storage.Driver)

	switch config.Storage.Driver {
	case configs.StorageMemory:
		log.Warn("using in-memory storage; carts are lost on restart")
		return repositories.NewMemoryStore(), func() {}, nil

	case configs.StorageRedis:
		redisCache, err := cache.NewRedisCache(ctx, config.Redis.URL, config.Redis.Password, config.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to redis")
		return redisCache, func() { _ = redisCache.Close() }, nil

	case configs.StoragePostgres:
		db, err := database.OpenPostgres(config.Database.PostgresURL, log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.AutoMigrate(&models.StorageEntry{}); err != nil {
			_ = database.ClosePostgres(db)
			return nil, nil, fmt.Errorf("failed to migrate storage table: %w", err)
		}
		return repositories.NewPostgresStore(db), func() { _ = database.ClosePostgres(db) }, nil

	case configs.StorageMongo:
		db, err := database.OpenMongo(config.Database.MongoURL, config.Database.MongoDBName, log)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewMongoStore(db), func() { _ = database.CloseMongo(db) }, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
}
