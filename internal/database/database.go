package database

import (
	"khet-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 ("prepared statement already exists")
// when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all models, parents before children so
// RESTRICT constraints resolve.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Permission{},
		&models.Farm{},
		&models.FarmAsset{},
		&models.CropType{},
		&models.Field{},
		&models.Crop{},
		&models.Expense{},
		&models.Output{},
		&models.Ledger{},
		&models.LedgerEntry{},
	)
}
