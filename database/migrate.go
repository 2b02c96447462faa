package database

import (
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates every table and installs the database-level guards.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		utils.ErrorLogger.Printf("Failed to migrate: %v", err)
		return err
	}
	utils.InfoLogger.Println("Database migrated")

	return ExecuteTriggers(db)
}
