package config

import (
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		Logger().Info("No .env file found, using system environment variables")
	}

	dsn := os.Getenv("DB_DSN")
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		Logger().WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := Migrations(DB); err != nil {
		Logger().WithError(err).Fatal("Failed to run migrations")
	}

	// Seed lookup data (skips anything already present)
	SeedLookups()
}
