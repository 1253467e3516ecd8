package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Conte777/NewsFlow/services/crawler-service/config"
	"github.com/Conte777/NewsFlow/services/crawler-service/pkg/retry"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// pingPolicy gives a database that is still starting up about half a minute
var pingPolicy = retry.Exponential(6, time.Second, 8*time.Second)

// NewPostgresDB creates a new PostgreSQL database connection and waits until it answers
func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: NewGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	err = pingPolicy.Do(ctx, func(ctx context.Context, attempt int) error {
		return sqlDB.PingContext(ctx)
	}, func(err error, next time.Duration) {
		logger.Warn().Err(err).Dur("retry_in", next).Msg("Database is not ready")
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}

	return db, nil
}
