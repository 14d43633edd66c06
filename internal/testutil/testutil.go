// Package testutil opens throwaway databases for repository and service tests.
package testutil

import (
	"fmt"
	"testing"

	"escape_room_backend/pkg/database"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB returns a migrated in-memory SQLite database private to the test.
// A single connection is used so concurrent transactions serialize.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.AutoMigrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}
