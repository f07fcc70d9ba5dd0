package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sangkips/venue-pos-api/internal/config"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database selected by cfg.Driver.
func Open(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres", "":
		return NewPostgresDB(cfg, debug)
	case "sqlite":
		return NewSQLiteDB(cfg.SQLitePath, debug)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func gormConfig(debug bool) *gorm.Config {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	logrus.WithField("host", cfg.Host).Info("Connected to PostgreSQL database")
	return db, nil
}

// NewSQLiteDB opens a SQLite database for single-till venues. path may be
// a file path or a "file:" URI; in-memory URIs are used by tests.
func NewSQLiteDB(path string, debug bool) (*gorm.DB, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps in-memory
	// databases alive for the life of the pool
	sqlDB.SetMaxOpenConns(1)

	logrus.WithField("path", path).Info("Opened SQLite database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&entity.Bill{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
