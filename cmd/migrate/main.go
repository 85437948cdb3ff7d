package main

import (
	"networth/internal/config" // Custom import path (Config)
	"networth/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.MigrateDSN(cfg.DSN())   // Migrate the MySQL schema
}
