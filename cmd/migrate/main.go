package main

import (
	"log"
	"os"

	"trading-contests/internal/config"
	"trading-contests/internal/database"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Operator-run migration: applies AutoMigrate and the instrument seed, plus
// an optional raw SQL file passed as the first argument.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.MigrateAll(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.SeedInstruments(db); err != nil {
		log.Fatalf("Failed to seed instruments: %v", err)
	}

	if len(os.Args) > 1 {
		path := os.Args[1]
		sqlBytes, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read migration file: %v", err)
		}
		log.Printf("Applying migration: %s", path)
		if err := db.Exec(string(sqlBytes)).Error; err != nil {
			log.Fatalf("Failed to apply migration: %v", err)
		}
	}

	log.Println("Migrations applied successfully")
}
