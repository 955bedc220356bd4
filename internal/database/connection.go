package database

import (
	"fmt"
	"time"

	"github.com/omnitrackr/omnitrackr-api/internal/config"
	"github.com/omnitrackr/omnitrackr-api/internal/models"
	"github.com/omnitrackr/omnitrackr-api/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	var logLevel gormlogger.LogLevel
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Repositories draw their own transaction boundaries at the
		// operation level; skip the implicit per-statement one.
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		// Surface unique-index violations as gorm.ErrDuplicatedKey so the
		// repositories can turn them into typed duplicate errors.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected successfully")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// One pending request per unordered pair, in either direction. Enforced
	// here rather than checked-then-inserted so concurrent opposite-direction
	// creates serialize on the index.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_friend_requests_pending_pair
		ON friend_requests (LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id))
		WHERE status = 'pending'
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create pending pair index: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}
