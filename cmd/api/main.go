package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/omnitrackr/omnitrackr-api/internal/config"
	"github.com/omnitrackr/omnitrackr-api/internal/database"
	"github.com/omnitrackr/omnitrackr-api/internal/handlers"
	"github.com/omnitrackr/omnitrackr-api/internal/repositories"
	"github.com/omnitrackr/omnitrackr-api/internal/services"
	"github.com/omnitrackr/omnitrackr-api/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize logger
	logger.Init("api")
	defer logger.Sync()

	logger.Info("Starting OmniTrackr API...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	// Validate production security settings
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
	}

	// Connect to database with TLS
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	// Run GORM auto-migration
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	store := repositories.NewStore(db)
	friendService := services.NewFriendService(store, cfg.FriendRequestTTL())
	notificationService := services.NewNotificationService(store)
	privacyService := services.NewPrivacyService(store)
	accountService := services.NewAccountService(store)

	app := fiber.New(fiber.Config{
		AppName:               "omnitrackr-api",
		DisableStartupMessage: cfg.AppEnv == "production",
	})

	handlers.Setup(
		app,
		cfg,
		handlers.NewFriendHandler(friendService, accountService),
		handlers.NewNotificationHandler(notificationService),
		handlers.NewAccountHandler(accountService, privacyService),
	)

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			logger.Fatal("Server stopped", err)
		}
	}()

	logger.Info("API started successfully", "env", cfg.AppEnv, "port", cfg.AppPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	if err := app.Shutdown(); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
}
