package storage

import (
	"errors"
	"os"

	"github.com/SanskarBabel/BuyerBase/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres database named by DATABASE_URL and runs the
// migrations. The handle is returned to the caller, which owns its
// lifecycle; nothing here is kept as package state.
func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Buyer{},
		&models.BuyerHistory{},
	)
}
