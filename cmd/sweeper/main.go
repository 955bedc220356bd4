package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/omnitrackr/omnitrackr-api/internal/config"
	"github.com/omnitrackr/omnitrackr-api/internal/database"
	"github.com/omnitrackr/omnitrackr-api/internal/repositories"
	"github.com/omnitrackr/omnitrackr-api/internal/services"
	"github.com/omnitrackr/omnitrackr-api/pkg/logger"
)

// The sweeper is a one-shot batch job: it marks every pending friend
// request past its expiry as expired and exits. Run it from cron or a
// scheduler; the API never expires requests on its own.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	logger.Init("sweeper")
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	store := repositories.NewStore(db)
	friendService := services.NewFriendService(store, cfg.FriendRequestTTL())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	count, err := friendService.ExpireSweep(ctx, time.Now().UTC())
	if err != nil {
		logger.Fatal("Sweep failed", err)
	}
	logger.Info("Sweep finished", "expired", count)
}
