package sqlite

import (
	"os"
	"time"

	"echodft/cmd/internal/domain/entity"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultDBPath = "database.db"

// Init opens the database at DB_PATH (or ./database.db).
func Init() (*gorm.DB, error) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	return Open(dbPath)
}

// Open opens and migrates a database. Tests use ":memory:".
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// A single connection also keeps ":memory:" databases alive across queries.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = db.AutoMigrate(&entity.User{}, &entity.CompanyAnalysis{}, &entity.Connection{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
