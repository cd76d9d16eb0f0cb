package dbhelper

import (
	"errors"
	"fmt"
	"log"

	"letrystudio/models"

	"gorm.io/gorm"
)

// SetupCleaner returns a func that empties both collections.
func SetupCleaner(db *gorm.DB) func() error {
	return func() error {
		all := db.Session(&gorm.Session{AllowGlobalUpdate: true})
		return errors.Join(
			all.Delete(&models.WardrobeRecord{}).Error,
			all.Delete(&models.AvatarRecord{}).Error,
		)
	}
}

func Migrate(db *gorm.DB, model interface{}) error {
	err := db.AutoMigrate(model)
	if err != nil {
		log.Printf("Error while migrating %T", model)
		return fmt.Errorf("migrate %T: %w", model, err)
	}
	return nil
}
