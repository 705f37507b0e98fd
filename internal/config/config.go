package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"catalog-admin-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// Server
	Port        string
	Environment string

	// Upload storage: images are written under UploadRoot/img and served
	// back to the admin UI from the same root.
	UploadRoot string
	ImageDir   string

	// Pagination
	DefaultPageSize int
	MaxPageSize     int

	// Image constraints
	MaxImageSizeKB   int
	AllowedImageType string
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "4"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	maxImageSizeKB, _ := strconv.Atoi(getEnv("MAX_IMAGE_SIZE_KB", "200"))

	return &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "catalog_admin_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("PORT", "8088"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Uploads
		UploadRoot: getEnv("UPLOAD_ROOT", "./wwwroot"),
		ImageDir:   getEnv("IMAGE_DIR", "img"),

		// Pagination
		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,

		// Image constraints
		MaxImageSizeKB:   maxImageSizeKB,
		AllowedImageType: getEnv("ALLOWED_IMAGE_TYPE", "image/"),
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate models to keep schema up to date
	// This will add missing columns but won't delete existing columns
	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
	); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
