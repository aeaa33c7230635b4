package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the forensic SQLite store at dbPath. Concurrent evaluations
// append from many goroutines, so WAL mode and a busy timeout are applied to
// let SQLite serialize writers instead of failing them outright.
func Connect(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(withPragmas(dbPath)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if strings.Contains(dbPath, "memory") {
		// every pooled connection to :memory: would see its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func withPragmas(dbPath string) string {
	if strings.Contains(dbPath, "_busy_timeout") {
		return dbPath
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_busy_timeout=5000&_journal_mode=WAL"
}
