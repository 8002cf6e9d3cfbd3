package dbhelper

import (
	"os"
	"time"

	"studioapi/config"
	"studioapi/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupDB(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Minute * 5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// SetupTestDB connects to the local test database, nil when it is not
// reachable so callers can skip.
func SetupTestDB() *gorm.DB {
	os.Setenv("DB_USERNAME", "studio")
	os.Setenv("DB_PASSWORD", "studio")
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("DB_NAME", "studio_test")
	os.Setenv("DB_PORT", "5432")
	db, err := SetupDB(config.LoadConfig().DB)
	if err != nil {
		return nil
	}
	return db
}

func Migrate(db *gorm.DB) error {
	return migrate(db, &models.GenerationRecord{})
}
