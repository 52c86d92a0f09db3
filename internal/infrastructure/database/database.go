package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/miracle7662/RestaurantNew-sub004/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the database selected by cfg.Driver
func NewDatabase(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	if cfg.IsSQLite() {
		return NewSQLiteDB(cfg, debug)
	}
	if cfg.Driver == "postgres" {
		return NewPostgresDB(cfg, debug)
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func gormConfig(debug bool) *gorm.Config {
	logLevel := logger.Error
	if debug {
		logLevel = logger.Info
	}
	return &gorm.Config{
		Logger:         newLogger(log.New(os.Stdout, "\r\n", log.LstdFlags), logLevel),
		TranslateError: true,
	}
}

// newLogger keeps "record not found" out of the log, since lookups that
// miss are expected
func newLogger(w logger.Writer, level logger.LogLevel) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// NewSQLiteDB opens the SQLite file database
func NewSQLiteDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := OpenSQLite(cfg.SQLiteDSN(), debug)
	if err != nil {
		return nil, err
	}

	log.Printf("Successfully connected to SQLite database at %s", cfg.Path)
	return db, nil
}

// OpenSQLite opens dsn with a single connection. SQLite serializes writers,
// so one connection keeps transactions from failing with SQLITE_BUSY.
func OpenSQLite(dsn string, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	return db, nil
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

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}
