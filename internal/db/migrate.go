package db

import (
	"networth/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"  // GORM logger
)

// Open opens a MySQL connection with driver errors translated to GORM errors
func Open(dsn string, isProd bool) (*gorm.DB, error) {
	level := logger.Info // Log SQL while developing
	if isProd {
		level = logger.Warn
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,                          // Report unique violations as gorm.ErrDuplicatedKey
		Logger:         logger.Default.LogMode(level), // SQL logging level
	})
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return db.AutoMigrate(&domain.User{}, &domain.Balance{})
}

// MigrateDSN connects to dsn and migrates the schema, exiting on failure
func MigrateDSN(dsn string) {
	db, err := Open(dsn, true) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := Migrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
}
