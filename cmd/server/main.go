package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jpark/addressbook-backend/config"
	"github.com/jpark/addressbook-backend/internal/app/controller"
	"github.com/jpark/addressbook-backend/internal/app/repository"
	"github.com/jpark/addressbook-backend/internal/app/service"
	"github.com/jpark/addressbook-backend/internal/db"
	"github.com/jpark/addressbook-backend/internal/middleware"
	"github.com/jpark/addressbook-backend/internal/router"
	"github.com/jpark/addressbook-backend/internal/scheduler"
	"github.com/jpark/addressbook-backend/internal/storage"
	"github.com/jpark/addressbook-backend/internal/websocket"
	"github.com/jpark/addressbook-backend/pkg/logger"
	"github.com/jpark/addressbook-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Address Book Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Token revocation needs Redis. The server still runs without it, so a
	// missing Redis only costs logout-before-expiry.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	addressService := service.NewAddressService(addressRepo)

	var uploader service.Uploader
	if cfg.S3.Bucket != "" {
		uploader = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	}
	exportService := service.NewExportService(addressRepo, uploader)

	// Address change feed
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	addressController := controller.NewAddressController(addressService, hub)
	exportController := controller.NewExportController(exportService)
	eventsController := controller.NewEventsController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Scheduled S3 backups
	if cfg.Backup.Enabled {
		if uploader == nil {
			logger.Warn("Backups enabled but no S3 bucket configured, skipping scheduler", nil)
		} else {
			backupScheduler := scheduler.NewBackupScheduler(exportService, cfg.Backup.Schedule)
			if err := backupScheduler.Start(); err != nil {
				logger.Fatal("Failed to start backup scheduler", err)
			}
			defer backupScheduler.Stop()
		}
	}

	// Setup router
	r := router.NewRouter(
		authController,
		addressController,
		exportController,
		eventsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
