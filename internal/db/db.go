package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lostfound-desk/config"
	"lostfound-desk/internal/logging"
	"lostfound-desk/internal/model"
)

// Init opens the database named by cfg.DSN and runs migrations. Postgres
// DSNs (URL or key=value form) use the postgres driver; anything else is
// treated as a SQLite file or URI.
func Init(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	log = logging.OrNop(log)
	db, err := gorm.Open(dialector(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Info("running database migrations", zap.String("driver", db.Dialector.Name()))
	if err := db.AutoMigrate(&model.Garment{}); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Info("database initialization complete")
	return db, nil
}

func dialector(dsn string) gorm.Dialector {
	if isPostgres(dsn) {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
