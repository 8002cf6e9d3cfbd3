package dbhelper

import (
	"log"

	"studioapi/models"

	"gorm.io/gorm"
)

func SetupCleaner(db *gorm.DB) func() {
	return func() {
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.GenerationRecord{})
	}
}

func migrate(db *gorm.DB, model interface{}) error {
	if err := db.AutoMigrate(model); err != nil {
		log.Printf("Error while migrating %T: %v", model, err)
		return err
	}
	return nil
}
