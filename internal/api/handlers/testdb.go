package handlers

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/services"
)

// OpenTestDB opens a SQLite in-memory database unique to t with the honeypot
// tables migrated. A single connection keeps concurrent handler tests from
// tripping over shared-cache table locks.
func OpenTestDB(t *testing.T) (*gorm.DB, *services.HoneypotStore) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := services.NewHoneypotStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db, store
}
