package db

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalogconsole/internal/models"
)

// Open connects to the snapshot database and migrates its table.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_DSN is empty (check your .env)")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.SnapshotRow{}); err != nil {
		return nil, err
	}
	return db, nil
}
