package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-admin-service/internal/config"
	"catalog-admin-service/internal/events"
	"catalog-admin-service/internal/handlers"
	"catalog-admin-service/internal/middleware"
	"catalog-admin-service/internal/repository"
	"catalog-admin-service/internal/services"
	"catalog-admin-service/internal/storage"
)

// @title Catalog Admin API
// @version 1.0.0
// @description Product management backend for the e-commerce admin panel
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8088
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	var redisClient *redis.Client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
	} else {
		redisClient = redis.NewClient(redisOpts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
			redisClient = nil
		} else {
			log.Println("✓ Redis connected successfully")
		}
		cancel()
	}

	// Initialize storage and repository
	fileStore := storage.NewLocalFileStore(cfg.UploadRoot)
	productsRepo := repository.NewProductsRepository(db, redisClient)

	// Initialize event publisher for audit trail only if NATS_URL is set
	var eventsPublisher *events.Publisher
	natsURL := os.Getenv("NATS_URL")
	if natsURL != "" {
		eventsPublisher, err = events.NewPublisher(natsURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer func() {
		if eventsPublisher != nil {
			eventsPublisher.Close()
		}
	}()

	// Initialize service and handlers
	imageBuilder := services.NewImageSetBuilder(fileStore, cfg.ImageDir, services.ImageConstraints{
		AllowedTypePrefix: cfg.AllowedImageType,
		MaxSizeKB:         cfg.MaxImageSizeKB,
	})
	productsService := services.NewProductsService(productsRepo, imageBuilder, fileStore, cfg.ImageDir, logger)
	productsHandler := handlers.NewProductsHandler(productsService, eventsPublisher, cfg.DefaultPageSize, cfg.MaxPageSize)
	exportHandler := handlers.NewExportHandler(productsService)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	// Health check endpoints
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	// Stored images are served straight from the upload root
	router.Static("/uploads", cfg.UploadRoot)

	// API routes
	api := router.Group("/api/v1")
	{
		products := api.Group("/products")
		{
			products.GET("", productsHandler.GetProducts)
			products.GET("/new", productsHandler.GetCreateForm)
			products.POST("", productsHandler.CreateProduct)
			products.GET("/:id", productsHandler.GetProduct)
			products.GET("/:id/edit", productsHandler.GetEditForm)
			products.PUT("/:id", productsHandler.UpdateProduct)
			products.DELETE("/:id", productsHandler.DeleteProduct)
			products.POST("/export", exportHandler.ExportProducts)
		}

		api.GET("/categories", productsHandler.GetCategories)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog admin service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down catalog-admin-service...")
}
