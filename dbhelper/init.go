package dbhelper

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"letrystudio/config"
	"letrystudio/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupDB(cfg config.StoreConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "postgres" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Minute * 5)
	} else {
		// single writer on the device file
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db, &models.AvatarRecord{}); err != nil {
		return nil, err
	}
	if err := Migrate(db, &models.WardrobeRecord{}); err != nil {
		return nil, err
	}

	return db, nil
}

// SetupTestDB opens a throwaway sqlite store under dir.
func SetupTestDB(dir string) *gorm.DB {
	db, err := SetupDB(config.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(dir, "studio_test.db"),
	})
	if err != nil {
		panic(err)
	}
	return db
}
